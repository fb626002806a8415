package wasmtest

import (
	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	"github.com/CosmWasm/recovervm/types"
)

// Memory layout of the conformance module. The data segment starts at HashAddr.
const (
	HashAddr      = 1024
	SignatureAddr = HashAddr + types.HashLen
	ExpectedAddr  = SignatureAddr + types.SignatureLen
	ResultAddr    = ExpectedAddr + types.RecoveredResultLen
	FileAddr      = ResultAddr + types.RecoveredResultLen
	MessageAddr   = FileAddr + 32
	// InputAddr is what the module's allocate export always hands out.
	InputAddr = 4096
)

const (
	// FileName is the source file the conformance module reports when it halts.
	FileName = "secp256k1_recover.wat"
	// Message is logged by the entry point before it calls the syscall.
	Message = "secp256k1 recover"
	// StatusCheckLine is reported when the syscall returned a nonzero status.
	StatusCheckLine = 35
	// CompareLine is reported when the recovered key differs from the expected one.
	CompareLine = 36
)

// Golden vector of the conformance program.
var (
	GoldenHash       = types.ForceNewHash("dea566b6943be0e96253c2215b1bac69e7a81edb41c5028b4f5c45c53b4954d0")
	GoldenSignature  = types.ForceNewSignature("97a4ee31fe8265729f4aa67d24d4a727f8c315a4c8f980eb4c4d4afa6ec942415d10d9c28a90e9929c524b2cfb65dfbcf68cfd68db17f95d235f96d8f072012d")
	GoldenRecoveryID = types.RecoveryID(1)
	GoldenResult     = types.ForceNewRecoveredResult("42cd27e40fdf7c970aa2ca0b885b960f8b628a41a181e7e68e03ea0b8420589b3206bd662f7565d69dbd1d34296ad93538ed869e992043c3ebad6550a0116e5d")
)

// Options shape the conformance module.
type Options struct {
	Hash       types.Hash
	Signature  types.Signature
	RecoveryID types.RecoveryID
	Expected   types.RecoveredResult
	// WithAllocator exports an allocate function that always returns InputAddr.
	WithAllocator bool
	// Spin makes the entry point loop forever.
	Spin bool
}

// GoldenOptions returns the options of the passing conformance program.
func GoldenOptions() Options {
	return Options{
		Hash:       GoldenHash,
		Signature:  GoldenSignature,
		RecoveryID: GoldenRecoveryID,
		Expected:   GoldenResult,
	}
}

// ConformanceModule builds a module that mirrors the conformance guest program:
// its entry point logs Message, calls sol_secp256k1_recover on the data segment
// buffers, halts at StatusCheckLine on a nonzero status, compares the 64 byte result
// with Expected and halts at CompareLine on mismatch, and returns 0 otherwise.
//
// Besides "entrypoint" it exports thin wrappers "recover", "halt", "log" and "log64" around
// the imports, "input_len" reading the length header of an input buffer, and "memory".
func ConformanceModule(opts Options) []byte {
	b := &builder{pages: 1, dataAddr: HashAddr}

	tRecover := b.addType([]byte{valI32, valI64, valI32, valI32}, []byte{valI64})
	tPanic := b.addType([]byte{valI32, valI64, valI64, valI64}, nil)
	tLog := b.addType([]byte{valI32, valI64}, nil)
	tLog64 := b.addType([]byte{valI64, valI64, valI64, valI64, valI64}, nil)
	tEntry := b.addType([]byte{valI32}, []byte{valI64})
	tAlloc := b.addType([]byte{valI32}, []byte{valI32})

	fRecover := b.importFunc(constants.HostModuleName, constants.Secp256k1RecoverImport, tRecover)
	fPanic := b.importFunc(constants.HostModuleName, constants.PanicImport, tPanic)
	fLog := b.importFunc(constants.HostModuleName, constants.LogImport, tLog)
	fLog64 := b.importFunc(constants.HostModuleName, constants.Log64Import, tLog64)

	recoverFwd := b.defineFunc(tRecover, forward(fRecover, 4))
	haltFwd := b.defineFunc(tPanic, forward(fPanic, 4))
	logFwd := b.defineFunc(tLog, forward(fLog, 2))
	log64Fwd := b.defineFunc(tLog64, forward(fLog64, 5))
	entry := b.defineFunc(tEntry, entrypointCode(opts, fRecover, fPanic, fLog))
	inputLen := b.defineFunc(tEntry, []byte{opLocalGet, 0, opI64Load, 3, 0})

	b.export(constants.MemoryExport, exportMemory, 0)
	b.export(constants.EntrypointExport, exportFunc, entry)
	b.export("recover", exportFunc, recoverFwd)
	b.export("halt", exportFunc, haltFwd)
	b.export("log", exportFunc, logFwd)
	b.export("log64", exportFunc, log64Fwd)
	b.export("input_len", exportFunc, inputLen)
	if opts.WithAllocator {
		alloc := b.defineFunc(tAlloc, appendSleb([]byte{opI32Const}, InputAddr))
		b.export(constants.AllocateExport, exportFunc, alloc)
	}

	data := make([]byte, MessageAddr-HashAddr)
	copy(data, opts.Hash[:])
	copy(data[SignatureAddr-HashAddr:], opts.Signature[:])
	copy(data[ExpectedAddr-HashAddr:], opts.Expected[:])
	copy(data[FileAddr-HashAddr:], FileName)
	data = append(data, Message...)
	b.data = data

	return b.bytes()
}

// MemoryModule builds a module that only exports one page of memory and,
// optionally, an allocate function returning InputAddr.
func MemoryModule(withAllocator bool) []byte {
	b := &builder{pages: 1}
	b.export(constants.MemoryExport, exportMemory, 0)
	tAlloc := b.addType([]byte{valI32}, []byte{valI32})
	if withAllocator {
		alloc := b.defineFunc(tAlloc, appendSleb([]byte{opI32Const}, InputAddr))
		b.export(constants.AllocateExport, exportFunc, alloc)
	}
	return b.bytes()
}

// forward passes all n parameters through to the imported function fn.
func forward(fn uint32, n int) []byte {
	var code []byte
	for i := 0; i < n; i++ {
		code = append(code, opLocalGet, byte(i))
	}
	code = append(code, opCall)
	return appendUleb(code, uint64(fn))
}

func entrypointCode(opts Options, fRecover, fPanic, fLog uint32) []byte {
	var code []byte
	if opts.Spin {
		code = append(code, opLoop, blockEmpty, opBr, 0, opEnd)
		return append(code, opI64Const, 0)
	}

	code = append(code, opI32Const)
	code = appendSleb(code, MessageAddr)
	code = append(code, opI64Const)
	code = appendSleb(code, int64(len(Message)))
	code = append(code, opCall)
	code = appendUleb(code, uint64(fLog))

	code = append(code, opI32Const)
	code = appendSleb(code, HashAddr)
	code = append(code, opI64Const)
	code = appendSleb(code, int64(opts.RecoveryID))
	code = append(code, opI32Const)
	code = appendSleb(code, SignatureAddr)
	code = append(code, opI32Const)
	code = appendSleb(code, ResultAddr)
	code = append(code, opCall)
	code = appendUleb(code, uint64(fRecover))

	code = append(code, opI64Const, 0, opI64Ne, opIf, blockEmpty)
	code = append(code, haltCode(fPanic, StatusCheckLine)...)
	code = append(code, opUnreachable, opEnd)

	for off := 0; off < types.RecoveredResultLen; off += 8 {
		code = append(code, opI32Const)
		code = appendSleb(code, ResultAddr)
		code = append(code, opI64Load, 3)
		code = appendUleb(code, uint64(off))
		code = append(code, opI32Const)
		code = appendSleb(code, ExpectedAddr)
		code = append(code, opI64Load, 3)
		code = appendUleb(code, uint64(off))
		code = append(code, opI64Ne, opIf, blockEmpty)
		code = append(code, haltCode(fPanic, CompareLine)...)
		code = append(code, opUnreachable, opEnd)
	}

	return append(code, opI64Const, 0)
}

func haltCode(fPanic uint32, line int64) []byte {
	code := []byte{opI32Const}
	code = appendSleb(code, FileAddr)
	code = append(code, opI64Const)
	code = appendSleb(code, int64(len(FileName)))
	code = append(code, opI64Const)
	code = appendSleb(code, line)
	code = append(code, opI64Const, 0, opCall)
	return appendUleb(code, uint64(fPanic))
}

// InitializedValue is what the entry point of InitializeModule returns once
// _initialize has run.
const InitializedValue = 7

// InitializeModule builds a reactor style module: "_initialize" stores
// InitializedValue in memory and "entrypoint" returns the stored value.
func InitializeModule() []byte {
	b := &builder{pages: 1}
	tInit := b.addType(nil, nil)
	tEntry := b.addType([]byte{valI32}, []byte{valI64})

	initCode := appendSleb([]byte{opI32Const}, 8)
	initCode = appendSleb(append(initCode, opI64Const), InitializedValue)
	initCode = append(initCode, opI64Store, 3, 0)
	init := b.defineFunc(tInit, initCode)

	entryCode := appendSleb([]byte{opI32Const}, 8)
	entry := b.defineFunc(tEntry, append(entryCode, opI64Load, 3, 0))

	b.export(constants.MemoryExport, exportMemory, 0)
	b.export(constants.InitializeExport, exportFunc, init)
	b.export(constants.EntrypointExport, exportFunc, entry)
	return b.bytes()
}

// ForeignImportModule builds an otherwise valid module that imports a function the
// host does not provide.
func ForeignImportModule(module, name string) []byte {
	b := &builder{pages: 1}
	tEntry := b.addType([]byte{valI32}, []byte{valI64})
	b.importFunc(module, name, tEntry)
	entry := b.defineFunc(tEntry, []byte{opI64Const, 0})
	b.export(constants.MemoryExport, exportMemory, 0)
	b.export(constants.EntrypointExport, exportFunc, entry)
	return b.bytes()
}

// BadEntrypointModule builds a module whose entry point takes no input and
// returns an i32.
func BadEntrypointModule() []byte {
	b := &builder{pages: 1}
	tEntry := b.addType(nil, []byte{valI32})
	entry := b.defineFunc(tEntry, []byte{opI32Const, 0})
	b.export(constants.MemoryExport, exportMemory, 0)
	b.export(constants.EntrypointExport, exportFunc, entry)
	return b.bytes()
}
