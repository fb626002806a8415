package types

import "fmt"

// RecoveryID selects which of the candidate public keys for a signature is returned.
// It travels as a full machine word across the syscall boundary.
type RecoveryID uint64

// MaxRecoveryID is the highest recovery id the secp256k1 recovery algorithm accepts.
const MaxRecoveryID RecoveryID = 3

// Valid reports whether the id is in the range the recovery algorithm accepts.
func (id RecoveryID) Valid() bool {
	return id <= MaxRecoveryID
}

// StatusCode is the value returned by a syscall. Zero is success, anything else is a
// host defined error code handed back to the guest as plain data.
type StatusCode uint64

const (
	StatusSuccess StatusCode = 0
	// 1 is reserved for an unparsable hash, which a fixed size Hash cannot be.
	StatusInvalidRecoveryID StatusCode = 2
	StatusInvalidSignature  StatusCode = 3
)

// IsSuccess reports whether the status is StatusSuccess.
func (c StatusCode) IsSuccess() bool {
	return c == StatusSuccess
}

func (c StatusCode) String() string {
	switch c {
	case StatusSuccess:
		return "success"
	case StatusInvalidRecoveryID:
		return "invalid recovery id"
	case StatusInvalidSignature:
		return "invalid signature"
	default:
		return fmt.Sprintf("status %d", uint64(c))
	}
}
