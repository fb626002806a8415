package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	"github.com/CosmWasm/recovervm/internal/runtime/crypto"
	"github.com/CosmWasm/recovervm/internal/runtime/gas"
	"github.com/CosmWasm/recovervm/types"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const envKey contextKey = "env"

// ErrNoEnvironment is raised by a host function called outside of an execution.
var ErrNoEnvironment = errors.New("host environment missing from context")

// Environment holds the state of exactly one execution. It is created by the engine
// before the entry point is called and discarded afterwards; nothing in it is shared
// between executions.
type Environment struct {
	Gas    gas.Meter
	Logger zerolog.Logger

	logs    []string
	halt    *types.HaltError
	aborted error
}

// NewEnvironment creates the environment of a single execution.
func NewEnvironment(meter gas.Meter, logger zerolog.Logger) *Environment {
	return &Environment{
		Gas:    meter,
		Logger: logger,
	}
}

// WithEnvironment attaches env to ctx so the host functions can find it.
func WithEnvironment(ctx context.Context, env *Environment) context.Context {
	return context.WithValue(ctx, envKey, env)
}

// EnvironmentFromContext returns the environment attached by WithEnvironment.
func EnvironmentFromContext(ctx context.Context) (*Environment, bool) {
	env, ok := ctx.Value(envKey).(*Environment)
	return env, ok
}

// Secp256k1Recover charges for and performs one public key recovery.
// A nonzero status is a normal result; only running out of gas is an error.
func (e *Environment) Secp256k1Recover(hash *types.Hash, recoveryID types.RecoveryID, signature *types.Signature, result *types.RecoveredResult) (types.StatusCode, error) {
	if err := e.Gas.Consume(constants.Secp256k1RecoverCost); err != nil {
		return 0, err
	}
	status := crypto.Secp256k1Recover(hash, recoveryID, signature, result)
	e.Logger.Debug().
		Uint64("recovery_id", uint64(recoveryID)).
		Stringer("status", status).
		Msg("sol_secp256k1_recover")
	return status, nil
}

// Log charges for and records one guest log line.
func (e *Environment) Log(msg string) error {
	if err := e.Gas.Consume(constants.SyscallBaseCost + uint64(len(msg))*constants.GasPerByte); err != nil {
		return err
	}
	e.logs = append(e.logs, msg)
	e.Logger.Debug().Str("msg", msg).Msg("program log")
	return nil
}

// Log64 charges for and records five integers as one hexadecimal log line.
func (e *Environment) Log64(arg1, arg2, arg3, arg4, arg5 uint64) error {
	if err := e.Gas.Consume(constants.SyscallBaseCost); err != nil {
		return err
	}
	msg := fmt.Sprintf("%#x, %#x, %#x, %#x, %#x", arg1, arg2, arg3, arg4, arg5)
	e.logs = append(e.logs, msg)
	e.Logger.Debug().Str("msg", msg).Msg("program log")
	return nil
}

// Panic records the halt of the guest and returns the error the engine surfaces.
// Only the first halt counts.
func (e *Environment) Panic(loc types.PanicLocation) *types.HaltError {
	if e.halt != nil {
		return e.halt
	}
	e.halt = &types.HaltError{Location: loc, GasUsed: e.Gas.Consumed()}
	e.Logger.Warn().
		Str("file", loc.File).
		Uint64("line", loc.Line).
		Uint64("column", loc.Column).
		Msg("program halted")
	return e.halt
}

// Abort records a host side failure that terminates the execution. The returned
// error is err itself.
func (e *Environment) Abort(err error) error {
	if e.aborted == nil {
		e.aborted = err
		e.Logger.Debug().Err(err).Msg("execution aborted")
	}
	return err
}

// Halted returns the recorded halt, or nil.
func (e *Environment) Halted() *types.HaltError {
	return e.halt
}

// Aborted returns the recorded abort reason, or nil.
func (e *Environment) Aborted() error {
	return e.aborted
}

// Logs returns the log lines recorded so far.
func (e *Environment) Logs() []string {
	return append([]string(nil), e.logs...)
}
