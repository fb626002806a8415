package error

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/recovervm/types"
)

func TestToVMError(t *testing.T) {
	gasErr := fmt.Errorf("wrapped: %w", &GasError{Wanted: 25_000, Available: 10})
	assert.Equal(t, types.OutOfGasError{Wanted: 25_000, Available: 10}, ToVMError(gasErr))

	accessErr := &AccessError{Addr: 0xfff0, Len: 64}
	assert.Equal(t, types.AccessViolationError{Addr: 0xfff0, Len: 64}, ToVMError(accessErr))

	other := errors.New("other")
	assert.Same(t, other, ToVMError(other))
	assert.Nil(t, ToVMError(nil))
}

func TestRuntimeError(t *testing.T) {
	inner := errors.New("context canceled")
	err := &RuntimeError{Msg: "execution interrupted", Err: inner}
	assert.Equal(t, "execution interrupted: context canceled", err.Error())
	require.ErrorIs(t, err, inner)

	assert.Equal(t, "program exited", (&RuntimeError{Msg: "program exited"}).Error())
}
