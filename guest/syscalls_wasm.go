//go:build wasip1

package guest

import (
	"encoding/binary"
	"unsafe"

	"github.com/CosmWasm/recovervm/types"
)

//go:wasmimport env sol_secp256k1_recover
func solSecp256k1Recover(hash unsafe.Pointer, recoveryID uint64, signature unsafe.Pointer, result unsafe.Pointer) uint64

//go:wasmimport env sol_panic_
func solPanic(file unsafe.Pointer, length uint64, line uint64, column uint64)

//go:wasmimport env sol_log_
func solLog(msg unsafe.Pointer, length uint64)

//go:wasmimport env sol_log_64_
func solLog64(arg1, arg2, arg3, arg4, arg5 uint64)

// Host returns the syscalls imported from the host's "env" module.
func Host() Syscalls {
	return wasmHost{}
}

type wasmHost struct{}

func (wasmHost) Secp256k1Recover(hash *types.Hash, recoveryID types.RecoveryID, signature *types.Signature, result *types.RecoveredResult) types.StatusCode {
	return types.StatusCode(solSecp256k1Recover(unsafe.Pointer(hash), uint64(recoveryID), unsafe.Pointer(signature), unsafe.Pointer(result)))
}

func (wasmHost) Panic(loc types.PanicLocation) {
	solPanic(unsafe.Pointer(unsafe.StringData(loc.File)), uint64(len(loc.File)), loc.Line, loc.Column)
}

func (wasmHost) Log(msg string) {
	solLog(unsafe.Pointer(unsafe.StringData(msg)), uint64(len(msg)))
}

func (wasmHost) Log64(arg1, arg2, arg3, arg4, arg5 uint64) {
	solLog64(arg1, arg2, arg3, arg4, arg5)
}

// allocations keeps buffers handed to the host reachable until Input claims them.
var allocations = map[uintptr][]byte{}

// allocate reserves size bytes on the Go heap for the host to write the input
// region into. It returns 0 when size is 0.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	buf := make([]byte, size)
	ptr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	allocations[ptr] = buf
	return uint32(ptr)
}

// Input returns the bytes of the serialized input region the host placed at ptr:
// a little-endian u64 length followed by the data. A nil ptr is an empty input.
func Input(ptr unsafe.Pointer) []byte {
	if ptr == nil {
		return nil
	}
	if buf, ok := allocations[uintptr(ptr)]; ok {
		delete(allocations, uintptr(ptr))
		n := binary.LittleEndian.Uint64(buf)
		return buf[8 : 8+n]
	}
	n := binary.LittleEndian.Uint64(unsafe.Slice((*byte)(ptr), 8))
	return unsafe.Slice((*byte)(unsafe.Add(ptr, 8)), n)
}
