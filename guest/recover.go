package guest

import (
	"bytes"

	"github.com/CosmWasm/recovervm/types"
)

// RecoverPublicKey invokes the recovery syscall exactly once. The returned result is
// only meaningful when the status is types.StatusSuccess; a nonzero status is not
// fatal, it is up to the caller to decide what to do with it.
func RecoverPublicKey(sys Syscalls, hash *types.Hash, recoveryID types.RecoveryID, signature *types.Signature) (types.StatusCode, types.RecoveredResult) {
	var result types.RecoveredResult
	status := sys.Secp256k1Recover(hash, recoveryID, signature, &result)
	return status, result
}

// Compare reports whether the first length bytes of a and b are equal.
// Buffers shorter than length never compare equal.
func Compare(a, b []byte, length int) bool {
	if length < 0 || len(a) < length || len(b) < length {
		return false
	}
	return bytes.Equal(a[:length], b[:length])
}

// Log sends msg to the host's program log.
func Log(sys Syscalls, msg string) {
	sys.Log(msg)
}

// Log64 sends five integers to the host's program log.
func Log64(sys Syscalls, arg1, arg2, arg3, arg4, arg5 uint64) {
	sys.Log64(arg1, arg2, arg3, arg4, arg5)
}
