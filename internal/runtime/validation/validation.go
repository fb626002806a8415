package validation

import (
	"fmt"
	"slices"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/recovervm/internal/runtime/constants"
)

// wasiModuleName is the import namespace of WASI preview1, which Go guests need.
const wasiModuleName = "wasi_snapshot_preview1"

var supportedImports = []string{
	constants.Secp256k1RecoverImport,
	constants.PanicImport,
	constants.LogImport,
	constants.Log64Import,
}

// AnalyzeForValidation checks that a compiled module can be run by the host:
// one exported memory, an entry point of type (i32) -> i64, an optional
// allocate of type (i32) -> i32, and no imports the host cannot satisfy.
func AnalyzeForValidation(compiled wazero.CompiledModule) error {
	memoryCount := 0
	for _, exp := range compiled.ExportedMemories() {
		if exp != nil {
			memoryCount++
		}
	}
	if memoryCount != 1 {
		return fmt.Errorf("Error during static Wasm validation: Wasm program must export exactly one memory")
	}

	exports := compiled.ExportedFunctions()
	entry, ok := exports[constants.EntrypointExport]
	if !ok {
		return fmt.Errorf("Wasm program doesn't have required export: %q", constants.EntrypointExport)
	}
	if err := checkSignature(entry, []api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI64}); err != nil {
		return err
	}
	if alloc, ok := exports[constants.AllocateExport]; ok {
		if err := checkSignature(alloc, []api.ValueType{api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}); err != nil {
			return err
		}
	}
	if init, ok := exports[constants.InitializeExport]; ok {
		if err := checkSignature(init, nil, nil); err != nil {
			return err
		}
	}

	for _, imp := range compiled.ImportedFunctions() {
		module, name, _ := imp.Import()
		switch module {
		case wasiModuleName:
		case constants.HostModuleName:
			if !slices.Contains(supportedImports, name) {
				return fmt.Errorf("Wasm program imports unsupported host function %q", name)
			}
		default:
			return fmt.Errorf("Wasm program imports from unknown module %q", module)
		}
	}
	return nil
}

func checkSignature(def api.FunctionDefinition, params, results []api.ValueType) error {
	if !slices.Equal(def.ParamTypes(), params) || !slices.Equal(def.ResultTypes(), results) {
		return fmt.Errorf("Wasm export %q has signature %v -> %v, expected %v -> %v",
			def.ExportNames()[0], typeNames(def.ParamTypes()), typeNames(def.ResultTypes()),
			typeNames(params), typeNames(results))
	}
	return nil
}

func typeNames(types []api.ValueType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return names
}
