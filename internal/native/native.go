// Package native runs guest programs written against package guest directly in the
// host process, with the same syscall semantics as the Wasm engine.
package native

import (
	"context"
	"fmt"
	"runtime"

	"github.com/CosmWasm/recovervm/guest"
	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	rterrors "github.com/CosmWasm/recovervm/internal/runtime/error"
	"github.com/CosmWasm/recovervm/internal/runtime/host"
	"github.com/CosmWasm/recovervm/internal/runtime/memory"
	"github.com/CosmWasm/recovervm/types"
)

// ErrProgramExited is returned when a program left its goroutine without returning,
// e.g. by calling runtime.Goexit itself.
var ErrProgramExited = &rterrors.RuntimeError{Msg: "program exited without returning"}

// Run executes program on its own goroutine and waits for it to finish.
//
// A halt or a failed syscall ends the goroutine with runtime.Goexit, so the
// program cannot recover from it. The context is observed at every syscall;
// a program that never calls the host runs to completion.
func Run(ctx context.Context, env *host.Environment, program guest.Program, input []byte) (uint64, error) {
	sys := &syscalls{ctx: ctx, env: env}

	var (
		ret      uint64
		returned bool
		crash    error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			// recover is nil while unwinding from Goexit
			if r := recover(); r != nil {
				crash = &rterrors.RuntimeError{Msg: "program panicked", Err: fmt.Errorf("%v", r)}
			}
		}()
		ret = program(sys, input)
		returned = true
	}()
	<-done

	if halt := env.Halted(); halt != nil {
		return 0, halt
	}
	if err := env.Aborted(); err != nil {
		return 0, rterrors.ToVMError(err)
	}
	if crash != nil {
		env.Logger.Error().Err(crash).Msg("native program crashed")
		return 0, crash
	}
	if !returned {
		return 0, ErrProgramExited
	}
	return ret, nil
}

// syscalls backs guest.Syscalls with a host environment.
type syscalls struct {
	ctx context.Context
	env *host.Environment
}

var _ guest.Syscalls = (*syscalls)(nil)

func (s *syscalls) Secp256k1Recover(hash *types.Hash, recoveryID types.RecoveryID, signature *types.Signature, result *types.RecoveredResult) types.StatusCode {
	s.checkContext()
	// the output is staged so a failed recovery leaves result untouched
	var out types.RecoveredResult
	status, err := s.env.Secp256k1Recover(hash, recoveryID, signature, &out)
	s.abortOnError(err)
	if status.IsSuccess() {
		*result = out
	}
	return status
}

func (s *syscalls) Panic(loc types.PanicLocation) {
	if uint64(len(loc.File)) > constants.MaxPanicFileLen {
		s.abortOnError(fmt.Errorf("string of %d bytes exceeds limit of %d: %w",
			len(loc.File), constants.MaxPanicFileLen, memory.ErrStringTooLong))
	}
	loc.File = memory.CleanString(loc.File)
	s.env.Panic(loc)
	runtime.Goexit()
}

func (s *syscalls) Log(msg string) {
	s.checkContext()
	if uint64(len(msg)) > constants.MaxLogLen {
		s.abortOnError(memory.ErrStringTooLong)
	}
	s.abortOnError(s.env.Log(memory.CleanString(msg)))
}

func (s *syscalls) Log64(arg1, arg2, arg3, arg4, arg5 uint64) {
	s.checkContext()
	s.abortOnError(s.env.Log64(arg1, arg2, arg3, arg4, arg5))
}

func (s *syscalls) checkContext() {
	if err := s.ctx.Err(); err != nil {
		s.abortOnError(&rterrors.RuntimeError{Msg: "execution interrupted", Err: err})
	}
}

func (s *syscalls) abortOnError(err error) {
	if err != nil {
		s.env.Abort(err)
		runtime.Goexit()
	}
}
