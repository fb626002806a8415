package types

import (
	"errors"
	"fmt"
)

// SystemError captures host side failures that abort an execution without a guest halt.
// Exactly one of the fields should be set.
type SystemError struct {
	NoSuchCode      *NoSuchCode           `json:"no_such_code,omitempty"`
	AccessViolation *AccessViolationError `json:"access_violation,omitempty"`
	OutOfGas        *OutOfGasError        `json:"out_of_gas,omitempty"`
}

var (
	_ error = SystemError{}
	_ error = NoSuchCode{}
	_ error = AccessViolationError{}
	_ error = OutOfGasError{}
)

func (a SystemError) Error() string {
	switch {
	case a.NoSuchCode != nil:
		return a.NoSuchCode.Error()
	case a.AccessViolation != nil:
		return a.AccessViolation.Error()
	case a.OutOfGas != nil:
		return a.OutOfGas.Error()
	default:
		panic("unknown error variant")
	}
}

// NoSuchCode is returned when no code is stored under a checksum.
type NoSuchCode struct {
	Checksum Checksum `json:"checksum"`
}

func (e NoSuchCode) Error() string {
	return fmt.Sprintf("no such code: %s", e.Checksum)
}

// AccessViolationError is returned when a syscall argument points outside guest memory.
type AccessViolationError struct {
	Addr uint64 `json:"addr"`
	Len  uint64 `json:"len"`
}

func (e AccessViolationError) Error() string {
	return fmt.Sprintf("access violation at address %#x of %d bytes", e.Addr, e.Len)
}

// OutOfGasError is returned when an execution exceeds its compute budget.
type OutOfGasError struct {
	Wanted    uint64 `json:"wanted"`
	Available uint64 `json:"available"`
}

func (e OutOfGasError) Error() string {
	return fmt.Sprintf("out of gas: required %d, but only %d available", e.Wanted, e.Available)
}

// ToSystemError will try to convert the given error to a SystemError.
// It returns nil if err is nil or not one of the known variants.
func ToSystemError(err error) *SystemError {
	if err == nil {
		return nil
	}

	var sys SystemError
	if errors.As(err, &sys) {
		return &sys
	}
	var noCode NoSuchCode
	if errors.As(err, &noCode) {
		return &SystemError{NoSuchCode: &noCode}
	}
	var access AccessViolationError
	if errors.As(err, &access) {
		return &SystemError{AccessViolation: &access}
	}
	var gas OutOfGasError
	if errors.As(err, &gas) {
		return &SystemError{OutOfGas: &gas}
	}
	return nil
}
