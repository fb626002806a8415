package constants

const (
	// WasmPageSize is the size of a Wasm linear memory page.
	WasmPageSize = 65536

	// InputLengthPrefix is the size of the little-endian length header in front of
	// the serialized input buffer.
	InputLengthPrefix = 8

	// MaxPanicFileLen caps the file name a guest may report when it halts.
	MaxPanicFileLen = 4096
	// MaxLogLen caps a single guest log line.
	MaxLogLen = 10 * 1024
)

// Names of the host functions exported in the "env" module.
const (
	HostModuleName         = "env"
	Secp256k1RecoverImport = "sol_secp256k1_recover"
	PanicImport            = "sol_panic_"
	LogImport              = "sol_log_"
	Log64Import            = "sol_log_64_"
)

// Names of the functions a guest exports.
const (
	EntrypointExport = "entrypoint"
	AllocateExport   = "allocate"
	InitializeExport = "_initialize"
	MemoryExport     = "memory"
)
