package types

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// Checksum represents a unique identifier for a guest program.
// It is the SHA-256 hash of the program's Wasm bytecode.
type Checksum [ChecksumLen]byte

// ChecksumLen is the length of a checksum in bytes.
const ChecksumLen = 32

func (cs Checksum) String() string {
	return hex.EncodeToString(cs[:])
}

// MarshalJSON implements the json.Marshaler interface for Checksum.
// It converts the checksum to a hex-encoded string.
func (cs Checksum) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(cs[:]))
}

// UnmarshalJSON implements the json.Unmarshaler interface for Checksum.
// It parses a hex-encoded string into a checksum.
func (cs *Checksum) UnmarshalJSON(input []byte) error {
	var hexString string
	err := json.Unmarshal(input, &hexString)
	if err != nil {
		return err
	}

	data, err := hex.DecodeString(hexString)
	if err != nil {
		return err
	}
	if len(data) != ChecksumLen {
		return fmt.Errorf("got wrong number of bytes for checksum")
	}
	copy(cs[:], data)
	return nil
}

// ParseChecksum parses a hex-encoded checksum.
func ParseChecksum(input string) (Checksum, error) {
	data, err := hex.DecodeString(input)
	if err != nil {
		return Checksum{}, fmt.Errorf("could not decode checksum: %w", err)
	}
	return NewChecksum(data)
}

// Bytes returns the checksum as a byte slice.
func (cs Checksum) Bytes() []byte {
	return cs[:]
}

// NewChecksum creates a new Checksum from a byte slice.
// Returns an error if the slice length is not ChecksumLen.
func NewChecksum(b []byte) (Checksum, error) {
	if len(b) != ChecksumLen {
		return Checksum{}, errors.New("got wrong number of bytes for checksum")
	}
	var cs Checksum
	copy(cs[:], b)
	return cs, nil
}

// CreateChecksum computes the checksum of a Wasm blob.
// It does a minimal sanity check on the magic number so that obviously wrong
// input is rejected before it reaches the compiler.
func CreateChecksum(wasm []byte) (Checksum, error) {
	if len(wasm) == 0 {
		return Checksum{}, errors.New("wasm bytes nil or empty")
	}
	if len(wasm) < 4 || string(wasm[:4]) != "\x00asm" {
		return Checksum{}, errors.New("wasm bytes do not start with Wasm magic number")
	}
	return sha256.Sum256(wasm), nil
}
