package error

import (
	"errors"
	"fmt"

	"github.com/CosmWasm/recovervm/types"
)

// RuntimeError represents a generic runtime error
type RuntimeError struct {
	Msg string
	Err error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// GasError represents an error related to gas consumption
type GasError struct {
	Wanted    uint64
	Available uint64
}

func (e *GasError) Error() string {
	return fmt.Sprintf("insufficient gas: required %d, but only %d available", e.Wanted, e.Available)
}

// AccessError is raised when a syscall argument does not fit into guest memory.
type AccessError struct {
	Addr uint64
	Len  uint64
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("guest memory access out of bounds: %d bytes at %#x", e.Len, e.Addr)
}

// ToVMError converts internal errors to the public errors in package types.
// Errors without a public counterpart are returned unchanged.
func ToVMError(err error) error {
	var gasErr *GasError
	if errors.As(err, &gasErr) {
		return types.OutOfGasError{Wanted: gasErr.Wanted, Available: gasErr.Available}
	}
	var accessErr *AccessError
	if errors.As(err, &accessErr) {
		return types.AccessViolationError{Addr: accessErr.Addr, Len: accessErr.Len}
	}
	return err
}
