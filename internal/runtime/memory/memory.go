package memory

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	rterrors "github.com/CosmWasm/recovervm/internal/runtime/error"
)

// WasmMemory is an alias for the wazero Memory interface.
type WasmMemory = api.Memory

// MemoryManager gives host functions bounds checked access to a guest's linear memory.
type MemoryManager struct {
	Memory WasmMemory
	// WasmAllocate calls the guest's "allocate" export. Nil if the guest has none.
	WasmAllocate func(ctx context.Context, size uint32) (uint32, error)
}

// NewMemoryManager creates a MemoryManager for the given module. The "allocate"
// export is optional; without it the host cannot place input into the guest.
func NewMemoryManager(module api.Module) (*MemoryManager, error) {
	mem := module.Memory()
	if mem == nil {
		return nil, ErrNoMemory
	}
	mm := &MemoryManager{Memory: mem}
	if allocFn := module.ExportedFunction(constants.AllocateExport); allocFn != nil {
		mm.WasmAllocate = func(ctx context.Context, size uint32) (uint32, error) {
			results, err := allocFn.Call(ctx, uint64(size))
			if err != nil {
				return 0, err
			}
			if len(results) == 0 {
				return 0, errors.New("allocate returned no results")
			}
			return uint32(results[0]), nil
		}
	}
	return mm, nil
}

// Check rejects any access that does not lie completely inside the current memory.
// Addresses and lengths are taken as 64 bit values because the syscall ABI passes
// lengths as i64 and a guest must not be able to wrap them around.
func (m *MemoryManager) Check(addr, length uint64) error {
	size := uint64(m.Memory.Size())
	if addr > size || length > size-addr {
		return &rterrors.AccessError{Addr: addr, Len: length}
	}
	return nil
}

// Read copies length bytes from Wasm memory at the given offset into a new byte slice.
func (m *MemoryManager) Read(addr, length uint64) ([]byte, error) {
	if err := m.Check(addr, length); err != nil {
		return nil, err
	}
	data, ok := m.Memory.Read(uint32(addr), uint32(length))
	if !ok {
		return nil, &rterrors.AccessError{Addr: addr, Len: length}
	}
	// wazero returns a view on the live memory
	return append([]byte(nil), data...), nil
}

// ReadInto fills dst from Wasm memory at addr. Used for the fixed length syscall buffers.
func (m *MemoryManager) ReadInto(addr uint64, dst []byte) error {
	data, err := m.Read(addr, uint64(len(dst)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// Write copies the given data into Wasm memory starting at the given offset.
func (m *MemoryManager) Write(addr uint64, data []byte) error {
	if err := m.Check(addr, uint64(len(data))); err != nil {
		return err
	}
	if !m.Memory.Write(uint32(addr), data) {
		return &rterrors.AccessError{Addr: addr, Len: uint64(len(data))}
	}
	return nil
}

// ReadString reads a guest string of the given length. A trailing NUL, as sent by C
// guests, is dropped and invalid UTF-8 is replaced so the result is always printable.
func (m *MemoryManager) ReadString(addr, length, limit uint64) (string, error) {
	if length > limit {
		return "", fmt.Errorf("string of %d bytes exceeds limit of %d: %w", length, limit, ErrStringTooLong)
	}
	data, err := m.Read(addr, length)
	if err != nil {
		return "", err
	}
	return CleanString(string(data)), nil
}

// CleanString drops trailing NULs and replaces invalid UTF-8 in a guest supplied string.
func CleanString(s string) string {
	s = strings.TrimRight(s, "\x00")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, string(utf8.RuneError))
	}
	return s
}

// PlaceInput writes the serialized input (u64 little-endian length followed by the
// bytes) into memory obtained from the guest's allocator and returns its address.
// Empty input for a guest without an allocator is passed as address 0.
func (m *MemoryManager) PlaceInput(ctx context.Context, input []byte) (uint32, error) {
	if m.WasmAllocate == nil {
		if len(input) == 0 {
			return 0, nil
		}
		return 0, ErrNoAllocator
	}
	total := uint64(constants.InputLengthPrefix) + uint64(len(input))
	if total > uint64(m.Memory.Size()) {
		return 0, fmt.Errorf("input of %d bytes does not fit into guest memory", len(input))
	}
	addr, err := m.WasmAllocate(ctx, uint32(total))
	if err != nil {
		return 0, fmt.Errorf("guest allocate failed: %w", err)
	}
	if addr == 0 {
		// A zero offset is the guest's way to say allocation failed
		return 0, errors.New("allocation failed")
	}
	buf := make([]byte, total)
	binary.LittleEndian.PutUint64(buf, uint64(len(input)))
	copy(buf[constants.InputLengthPrefix:], input)
	if err := m.Write(uint64(addr), buf); err != nil {
		return 0, err
	}
	return addr, nil
}
