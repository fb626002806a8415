//go:build go1.18

package gofuzz

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/CosmWasm/recovervm"
	"github.com/CosmWasm/recovervm/internal/wasmtest"
	"github.com/CosmWasm/recovervm/types"
)

const TESTING_GAS_LIMIT = types.DefaultGasLimit

func newVM(t *testing.T) *recovervm.VM {
	t.Helper()
	vm, err := recovervm.NewVM(types.DefaultVMConfig(), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(vm.Cleanup)
	return vm
}

func FuzzStoreCode(f *testing.F) {
	f.Add(wasmtest.ConformanceModule(wasmtest.GoldenOptions()))
	f.Add(wasmtest.InitializeModule())
	f.Add(wasmtest.MemoryModule(true))
	// Add some manual edge cases
	f.Add([]byte{})                                   // empty
	f.Add([]byte{0x00, 0x61, 0x73, 0x6d})             // valid header only
	f.Add([]byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00}) // valid header + version prefix

	f.Fuzz(func(t *testing.T, wasm []byte) {
		vm := newVM(t)

		checksum, err := vm.StoreCode(wasm)
		if err != nil {
			return
		}
		code, err := vm.GetCode(checksum)
		if err != nil {
			t.Fatalf("stored code not found: %v", err)
		}
		if string(code) != string(wasm) {
			t.Fatal("stored code differs")
		}
		if err := vm.RemoveCode(checksum); err != nil {
			t.Fatalf("failed to remove code: %v", err)
		}
	})
}
