package native

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/CosmWasm/recovervm/guest"
	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	rterrors "github.com/CosmWasm/recovervm/internal/runtime/error"
	"github.com/CosmWasm/recovervm/internal/runtime/gas"
	"github.com/CosmWasm/recovervm/internal/runtime/host"
	"github.com/CosmWasm/recovervm/internal/runtime/memory"
	"github.com/CosmWasm/recovervm/programs/secp256k1recover"
	"github.com/CosmWasm/recovervm/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEnv(limit uint64) *host.Environment {
	return host.NewEnvironment(gas.NewDefaultMeter(limit), zerolog.Nop())
}

func TestRunConformanceProgram(t *testing.T) {
	env := newEnv(100_000)
	ret, err := Run(context.Background(), env, secp256k1recover.Entrypoint, nil)
	require.NoError(t, err)
	assert.Equal(t, guest.Success, ret)
	assert.Nil(t, env.Halted())
	assert.Equal(t, uint64(constants.Secp256k1RecoverCost), env.Gas.Consumed())
}

func TestRunReturnsProgramValue(t *testing.T) {
	ret, err := Run(context.Background(), newEnv(100), func(_ guest.Syscalls, input []byte) uint64 {
		return uint64(len(input))
	}, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), ret)
}

func TestRunHaltReportsLocation(t *testing.T) {
	var line int
	after := false
	env := newEnv(100)
	_, err := Run(context.Background(), env, func(sys guest.Syscalls, _ []byte) uint64 {
		_, _, line, _ = runtime.Caller(0)
		guest.Assert(sys, false)
		after = true
		return 0
	}, nil)

	var halt *types.HaltError
	require.ErrorAs(t, err, &halt)
	assert.True(t, strings.HasSuffix(halt.Location.File, "native_test.go"), halt.Location.File)
	assert.Equal(t, uint64(line+1), halt.Location.Line)
	assert.Zero(t, halt.Location.Column)
	assert.False(t, after)
	assert.Same(t, env.Halted(), halt)
}

func TestRunHaltIgnoresRecover(t *testing.T) {
	recovered := false
	_, err := Run(context.Background(), newEnv(100), func(sys guest.Syscalls, _ []byte) uint64 {
		defer func() {
			if recover() != nil {
				recovered = true
			}
		}()
		guest.Panic(sys, types.PanicLocation{File: "main.go", Line: 7})
		return 0
	}, nil)

	var halt *types.HaltError
	require.ErrorAs(t, err, &halt)
	assert.Equal(t, "main.go:7:0", halt.Location.String())
	assert.False(t, recovered)
}

func TestRunFailedRecoveryIsData(t *testing.T) {
	hash := secp256k1recover.Hash()
	sig := secp256k1recover.Signature()
	var status types.StatusCode
	var result types.RecoveredResult

	ret, err := Run(context.Background(), newEnv(100_000), func(sys guest.Syscalls, _ []byte) uint64 {
		status, result = guest.RecoverPublicKey(sys, &hash, 4, &sig)
		return uint64(status)
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInvalidRecoveryID, status)
	assert.Equal(t, uint64(types.StatusInvalidRecoveryID), ret)
	assert.Equal(t, types.RecoveredResult{}, result)
}

func TestRunOutOfGas(t *testing.T) {
	reached := false
	_, err := Run(context.Background(), newEnv(10), func(sys guest.Syscalls, _ []byte) uint64 {
		secp256k1recover.Entrypoint(sys, nil)
		reached = true
		return 0
	}, nil)

	var oog types.OutOfGasError
	require.ErrorAs(t, err, &oog)
	assert.Equal(t, uint64(constants.Secp256k1RecoverCost), oog.Wanted)
	assert.Equal(t, uint64(10), oog.Available)
	assert.False(t, reached)
}

func TestRunLog(t *testing.T) {
	env := newEnv(1000)
	_, err := Run(context.Background(), env, func(sys guest.Syscalls, _ []byte) uint64 {
		guest.Log(sys, "hello")
		return 0
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, env.Logs())
	assert.Equal(t, uint64(constants.SyscallBaseCost+5), env.Gas.Consumed())
}

func TestRunLogTooLong(t *testing.T) {
	_, err := Run(context.Background(), newEnv(1_000_000), func(sys guest.Syscalls, _ []byte) uint64 {
		guest.Log(sys, strings.Repeat("x", constants.MaxLogLen+1))
		return 0
	}, nil)
	require.ErrorIs(t, err, memory.ErrStringTooLong)
}

func TestRunGoPanicIsContained(t *testing.T) {
	_, err := Run(context.Background(), newEnv(100), func(guest.Syscalls, []byte) uint64 {
		panic("boom")
	}, nil)

	var rtErr *rterrors.RuntimeError
	require.ErrorAs(t, err, &rtErr)
	assert.Contains(t, rtErr.Error(), "boom")
}

func TestRunGoexit(t *testing.T) {
	_, err := Run(context.Background(), newEnv(100), func(guest.Syscalls, []byte) uint64 {
		runtime.Goexit()
		return 0
	}, nil)
	require.ErrorIs(t, err, ErrProgramExited)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Run(ctx, newEnv(100), func(sys guest.Syscalls, _ []byte) uint64 {
		guest.Log(sys, "never")
		calls++
		return 0
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, calls)
}

func TestRunHaltCleansFileName(t *testing.T) {
	_, err := Run(context.Background(), newEnv(100), func(sys guest.Syscalls, _ []byte) uint64 {
		guest.Panic(sys, types.PanicLocation{File: "main.c\x00", Line: 12, Column: 9})
		return 0
	}, nil)

	var halt *types.HaltError
	require.ErrorAs(t, err, &halt)
	assert.Equal(t, types.PanicLocation{File: "main.c", Line: 12, Column: 9}, halt.Location)
}

func TestRunHaltWithLongFileNameAborts(t *testing.T) {
	env := newEnv(100)
	_, err := Run(context.Background(), env, func(sys guest.Syscalls, _ []byte) uint64 {
		guest.Panic(sys, types.PanicLocation{File: strings.Repeat("f", constants.MaxPanicFileLen+1), Line: 1})
		return 0
	}, nil)
	require.ErrorIs(t, err, memory.ErrStringTooLong)
	assert.Nil(t, env.Halted())
}

func TestRunLog64(t *testing.T) {
	env := newEnv(1000)
	_, err := Run(context.Background(), env, func(sys guest.Syscalls, _ []byte) uint64 {
		guest.Log64(sys, 1, 2, 3, 4, 0xff)
		return 0
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0x1, 0x2, 0x3, 0x4, 0xff"}, env.Logs())
	assert.Equal(t, constants.SyscallBaseCost, env.Gas.Consumed())
}
