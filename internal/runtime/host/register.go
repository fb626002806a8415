package host

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	"github.com/CosmWasm/recovervm/internal/runtime/memory"
	"github.com/CosmWasm/recovervm/types"
)

// RegisterHostFunctions instantiates the "env" module with the syscalls guests import.
// The per execution state is looked up from the call context, so one instance serves
// every execution on the runtime.
func RegisterHostFunctions(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	builder := r.NewHostModuleBuilder(constants.HostModuleName)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(hostSecp256k1Recover),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI32, api.ValueTypeI32},
			[]api.ValueType{api.ValueTypeI64}).
		WithParameterNames("hash", "recovery_id", "signature", "result").
		Export(constants.Secp256k1RecoverImport)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(hostPanic),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64},
			[]api.ValueType{}).
		WithParameterNames("file", "len", "line", "column").
		Export(constants.PanicImport)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(hostLog),
			[]api.ValueType{api.ValueTypeI32, api.ValueTypeI64},
			[]api.ValueType{}).
		WithParameterNames("msg", "len").
		Export(constants.LogImport)

	builder.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(hostLog64),
			[]api.ValueType{api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64, api.ValueTypeI64},
			[]api.ValueType{}).
		WithParameterNames("arg1", "arg2", "arg3", "arg4", "arg5").
		Export(constants.Log64Import)

	return builder.Instantiate(ctx)
}

// hostSecp256k1Recover implements sol_secp256k1_recover.
// It reads the hash and signature from guest memory, makes sure the result buffer is
// writable, charges gas, and writes the recovered key only when the status is 0.
func hostSecp256k1Recover(ctx context.Context, mod api.Module, stack []uint64) {
	env, mm := mustSetup(ctx, mod)

	hashAddr := uint64(api.DecodeU32(stack[0]))
	recoveryID := types.RecoveryID(stack[1])
	sigAddr := uint64(api.DecodeU32(stack[2]))
	resultAddr := uint64(api.DecodeU32(stack[3]))

	var hash types.Hash
	abortOnError(env, mm.ReadInto(hashAddr, hash[:]))
	var signature types.Signature
	abortOnError(env, mm.ReadInto(sigAddr, signature[:]))
	abortOnError(env, mm.Check(resultAddr, types.RecoveredResultLen))

	var result types.RecoveredResult
	status, err := env.Secp256k1Recover(&hash, recoveryID, &signature, &result)
	abortOnError(env, err)
	if status.IsSuccess() {
		abortOnError(env, mm.Write(resultAddr, result[:]))
	}
	stack[0] = uint64(status)
}

// hostPanic implements sol_panic_. It never returns to the guest.
func hostPanic(ctx context.Context, mod api.Module, stack []uint64) {
	env, mm := mustSetup(ctx, mod)

	fileAddr := uint64(api.DecodeU32(stack[0]))
	fileLen := stack[1]
	file, err := mm.ReadString(fileAddr, fileLen, constants.MaxPanicFileLen)
	abortOnError(env, err)

	panic(env.Panic(types.PanicLocation{
		File:   file,
		Line:   stack[2],
		Column: stack[3],
	}))
}

// hostLog implements sol_log_.
func hostLog(ctx context.Context, mod api.Module, stack []uint64) {
	env, mm := mustSetup(ctx, mod)

	msg, err := mm.ReadString(uint64(api.DecodeU32(stack[0])), stack[1], constants.MaxLogLen)
	abortOnError(env, err)
	abortOnError(env, env.Log(msg))
}

// hostLog64 implements sol_log_64_.
func hostLog64(ctx context.Context, _ api.Module, stack []uint64) {
	env, ok := EnvironmentFromContext(ctx)
	if !ok {
		panic(ErrNoEnvironment)
	}
	abortOnError(env, env.Log64(stack[0], stack[1], stack[2], stack[3], stack[4]))
}

func mustSetup(ctx context.Context, mod api.Module) (*Environment, *memory.MemoryManager) {
	env, ok := EnvironmentFromContext(ctx)
	if !ok {
		panic(ErrNoEnvironment)
	}
	mm, err := memory.NewMemoryManager(mod)
	abortOnError(env, err)
	return env, mm
}

// abortOnError unwinds the guest when err is set. wazero turns the panic into the
// error returned from the exported function call.
func abortOnError(env *Environment, err error) {
	if err != nil {
		panic(env.Abort(err))
	}
}
