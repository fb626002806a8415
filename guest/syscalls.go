package guest

import "github.com/CosmWasm/recovervm/types"

// Syscalls is the set of host operations available to a guest program.
type Syscalls interface {
	// Secp256k1Recover asks the host to recover the public key for signature over hash.
	// result is only written when the returned status is types.StatusSuccess.
	Secp256k1Recover(hash *types.Hash, recoveryID types.RecoveryID, signature *types.Signature, result *types.RecoveredResult) types.StatusCode
	// Panic terminates the execution and reports loc. It does not return.
	Panic(loc types.PanicLocation)
	// Log hands a diagnostic message to the host.
	Log(msg string)
	// Log64 hands five integers to the host, which logs them in hexadecimal.
	Log64(arg1, arg2, arg3, arg4, arg5 uint64)
}

// Program is the entry procedure of a guest. It returns 0 on success.
type Program func(sys Syscalls, input []byte) uint64

// Success is the value a Program returns when it completed normally.
const Success uint64 = 0
