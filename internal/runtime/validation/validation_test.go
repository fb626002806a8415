package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/CosmWasm/recovervm/internal/wasmtest"
)

func TestAnalyzeForValidation(t *testing.T) {
	ctx := context.Background()
	r := wazero.NewRuntime(ctx)
	defer r.Close(ctx)

	withAllocator := wasmtest.GoldenOptions()
	withAllocator.WithAllocator = true

	cases := map[string]struct {
		wasm   []byte
		errMsg string
	}{
		"conformance":        {wasm: wasmtest.ConformanceModule(wasmtest.GoldenOptions())},
		"with allocator":     {wasm: wasmtest.ConformanceModule(withAllocator)},
		"reactor":            {wasm: wasmtest.InitializeModule()},
		"wasi import":        {wasm: wasmtest.ForeignImportModule("wasi_snapshot_preview1", "proc_exit")},
		"log64 import":       {wasm: wasmtest.ForeignImportModule("env", "sol_log_64_")},
		"no entrypoint":      {wasm: wasmtest.MemoryModule(true), errMsg: `doesn't have required export: "entrypoint"`},
		"bad entrypoint":     {wasm: wasmtest.BadEntrypointModule(), errMsg: `Wasm export "entrypoint" has signature [] -> [i32]`},
		"unknown module":     {wasm: wasmtest.ForeignImportModule("ethereum", "revert"), errMsg: `unknown module "ethereum"`},
		"unsupported import": {wasm: wasmtest.ForeignImportModule("env", "db_read"), errMsg: `unsupported host function "db_read"`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			compiled, err := r.CompileModule(ctx, tc.wasm)
			require.NoError(t, err)
			defer compiled.Close(ctx)

			err = AnalyzeForValidation(compiled)
			if tc.errMsg == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tc.errMsg)
			}
		})
	}
}
