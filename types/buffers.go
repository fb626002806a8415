package types

import (
	"encoding/hex"
	"fmt"
)

const (
	// HashLen is the length of the message digest presented for recovery.
	HashLen = 32
	// SignatureLen is the length of a compact r‖s signature.
	SignatureLen = 64
	// RecoveredResultLen is the length of a recovered public key (x‖y, no prefix).
	RecoveredResultLen = 64
)

// Hash is the 32 byte message digest handed to the recovery syscall.
type Hash [HashLen]byte

// Signature is a compact ECDSA signature r‖s, 32 bytes each, big endian.
type Signature [SignatureLen]byte

// RecoveredResult is the buffer the host fills with the recovered public key.
// Its content is only meaningful when the syscall returned StatusSuccess.
type RecoveredResult [RecoveredResultLen]byte

// NewHash copies b into a Hash. Returns an error if b is not exactly HashLen bytes.
func NewHash(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLen {
		return h, fmt.Errorf("got %d bytes for hash, expected %d", len(b), HashLen)
	}
	copy(h[:], b)
	return h, nil
}

// NewSignature copies b into a Signature. Returns an error if b is not exactly SignatureLen bytes.
func NewSignature(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureLen {
		return s, fmt.Errorf("got %d bytes for signature, expected %d", len(b), SignatureLen)
	}
	copy(s[:], b)
	return s, nil
}

// NewRecoveredResult copies b into a RecoveredResult. Returns an error if b is not exactly
// RecoveredResultLen bytes.
func NewRecoveredResult(b []byte) (RecoveredResult, error) {
	var r RecoveredResult
	if len(b) != RecoveredResultLen {
		return r, fmt.Errorf("got %d bytes for recovered result, expected %d", len(b), RecoveredResultLen)
	}
	copy(r[:], b)
	return r, nil
}

// ForceNewHash creates a Hash from a hex string.
// It panics in case the input is invalid.
func ForceNewHash(input string) Hash {
	h, err := NewHash(mustDecodeHex(input))
	if err != nil {
		panic(err)
	}
	return h
}

// ForceNewSignature creates a Signature from a hex string.
// It panics in case the input is invalid.
func ForceNewSignature(input string) Signature {
	s, err := NewSignature(mustDecodeHex(input))
	if err != nil {
		panic(err)
	}
	return s
}

// ForceNewRecoveredResult creates a RecoveredResult from a hex string.
// It panics in case the input is invalid.
func ForceNewRecoveredResult(input string) RecoveredResult {
	r, err := NewRecoveredResult(mustDecodeHex(input))
	if err != nil {
		panic(err)
	}
	return r
}

func mustDecodeHex(input string) []byte {
	data, err := hex.DecodeString(input)
	if err != nil {
		panic("could not decode hex bytes")
	}
	return data
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) String() string { return hex.EncodeToString(h[:]) }

func (s Signature) Bytes() []byte { return s[:] }

func (s Signature) String() string { return hex.EncodeToString(s[:]) }

func (r RecoveredResult) Bytes() []byte { return r[:] }

func (r RecoveredResult) String() string { return hex.EncodeToString(r[:]) }
