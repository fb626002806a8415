//go:build wasip1

// Command secp256k1recover is the conformance program built as a Wasm guest:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o secp256k1recover.wasm ./cmd/secp256k1recover
package main

import (
	"unsafe"

	"github.com/CosmWasm/recovervm/guest"
	"github.com/CosmWasm/recovervm/programs/secp256k1recover"
)

//go:wasmexport entrypoint
func entrypoint(input unsafe.Pointer) uint64 {
	return secp256k1recover.Entrypoint(guest.Host(), guest.Input(input))
}

func main() {}
