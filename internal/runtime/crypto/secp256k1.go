package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/CosmWasm/recovervm/types"
)

const (
	// compactSigMagicOffset is added to the recovery id in the header byte of a
	// compact signature.
	compactSigMagicOffset = 27
	compactSigLen         = 1 + types.SignatureLen
)

// Secp256k1Recover recovers the public key that produced signature over hash.
// The result is the uncompressed key without the 0x04 prefix (x‖y).
//
// It never fails with an error: every rejection is reported as a status code so it
// can be handed back to the guest as plain data. result is only written on success.
func Secp256k1Recover(hash *types.Hash, recoveryID types.RecoveryID, signature *types.Signature, result *types.RecoveredResult) types.StatusCode {
	if !recoveryID.Valid() {
		return types.StatusInvalidRecoveryID
	}

	var compact [compactSigLen]byte
	compact[0] = compactSigMagicOffset + byte(recoveryID)
	copy(compact[1:], signature[:])

	pub, _, err := ecdsa.RecoverCompact(compact[:], hash[:])
	if err != nil {
		return types.StatusInvalidSignature
	}

	// SerializeUncompressed is 0x04 ‖ x ‖ y
	copy(result[:], pub.SerializeUncompressed()[1:])
	return types.StatusSuccess
}
