package constants

// Compute costs charged by the host functions.
const (
	// SyscallBaseCost is charged by the log syscalls before they record anything.
	// Recovery is covered by its own flat cost and halting is free.
	SyscallBaseCost uint64 = 100
	// Secp256k1RecoverCost is charged per public key recovery, successful or not.
	Secp256k1RecoverCost uint64 = 25_000
	// GasPerByte is charged per byte of guest memory a syscall reads for logging or diagnostics.
	GasPerByte uint64 = 1
)
