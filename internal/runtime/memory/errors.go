package memory

import "errors"

var (
	// ErrNoMemory is returned when a guest does not export a linear memory
	ErrNoMemory = errors.New("guest does not export memory")
	// ErrNoAllocator is returned when input has to be placed into a guest without an allocate export
	ErrNoAllocator = errors.New("guest does not export allocate")
	// ErrStringTooLong is returned when a guest string exceeds the host limit
	ErrStringTooLong = errors.New("string too long")
)
