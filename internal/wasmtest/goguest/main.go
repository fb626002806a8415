//go:build wasip1

// Command goguest is a Go guest for engine tests. Its input selects what it does:
// empty input runs the conformance program, "halt" fails an assertion, "log64"
// logs five integers, and anything else is logged verbatim. Unless it halts it
// returns the input length.
package main

import (
	"unsafe"

	"github.com/CosmWasm/recovervm/guest"
	"github.com/CosmWasm/recovervm/programs/secp256k1recover"
)

//go:wasmexport entrypoint
func entrypoint(ptr unsafe.Pointer) uint64 {
	sys := guest.Host()
	input := guest.Input(ptr)
	switch string(input) {
	case "":
		return secp256k1recover.Entrypoint(sys, nil)
	case "halt":
		guest.Assert(sys, false)
	case "log64":
		guest.Log64(sys, 1, 2, 3, 4, 5)
	default:
		guest.Log(sys, string(input))
	}
	return uint64(len(input))
}

func main() {}
