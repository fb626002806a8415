package recovervm

import (
	"github.com/CosmWasm/recovervm/guest"
	"github.com/CosmWasm/recovervm/types"
)

// WasmCode is an alias for raw bytes of the wasm compiled code
type WasmCode []byte

// Checksum identifies stored code by the SHA-256 hash of its Wasm bytes
type Checksum = types.Checksum

// ExecutionResult is returned by Execute and RunNative when the entry point returned
type ExecutionResult = types.ExecutionResult

// Program is a guest program that runs natively in the host process
type Program = guest.Program

// CreateChecksum performs the hashing of Wasm bytes to obtain the checksum.
func CreateChecksum(wasm []byte) (Checksum, error) {
	return types.CreateChecksum(wasm)
}
