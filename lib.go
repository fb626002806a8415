// Package recovervm executes guest programs that use the secp256k1 public key
// recovery syscall, either as Wasm modules or natively in the host process.
package recovervm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/CosmWasm/recovervm/internal/native"
	"github.com/CosmWasm/recovervm/internal/runtime/gas"
	"github.com/CosmWasm/recovervm/internal/runtime/host"
	"github.com/CosmWasm/recovervm/internal/wazeroimpl"
	"github.com/CosmWasm/recovervm/types"
)

// VM is the main entry point to this library.
// It is safe for concurrent use; every execution gets its own environment,
// gas meter and module instance.
type VM struct {
	cache  *wazeroimpl.Cache
	config types.VMConfig
	logger zerolog.Logger
}

// NewVM creates a new VM. With an empty config.Cache.BaseDir all code is kept in memory.
func NewVM(config types.VMConfig, logger zerolog.Logger) (*VM, error) {
	if config.Debug {
		logger = logger.Level(zerolog.DebugLevel)
	}
	logger = logger.With().Str("module", "recovervm").Logger()

	cache, err := wazeroimpl.InitCache(config, logger)
	if err != nil {
		return nil, err
	}
	return &VM{cache: cache, config: config, logger: logger}, nil
}

// Cleanup releases resources used by this VM.
func (vm *VM) Cleanup() {
	if err := vm.cache.Close(context.Background()); err != nil {
		vm.logger.Error().Err(err).Msg("failed to close cache")
	}
}

// StoreCode validates and compiles the given wasm code and stores it under its checksum.
func (vm *VM) StoreCode(code WasmCode) (Checksum, error) {
	return vm.cache.StoreCode(context.Background(), code)
}

// GetCode returns the original Wasm bytes stored under checksum.
func (vm *VM) GetCode(checksum Checksum) (WasmCode, error) {
	return vm.cache.GetCode(checksum)
}

// RemoveCode deletes the code stored under checksum.
func (vm *VM) RemoveCode(checksum Checksum) error {
	return vm.cache.RemoveCode(context.Background(), checksum)
}

// Checksums lists all stored code.
func (vm *VM) Checksums() ([]Checksum, error) {
	return vm.cache.Checksums()
}

// Execute runs the entry point of the stored code with input.
//
// A gasLimit of 0 uses the configured limit. When the program halts the error
// is a *types.HaltError carrying the reported location.
func (vm *VM) Execute(ctx context.Context, checksum Checksum, input []byte, gasLimit uint64) (*ExecutionResult, error) {
	env := vm.newEnvironment(gasLimit, vm.logger.With().Stringer("checksum", checksum).Logger())
	ret, err := vm.cache.Execute(ctx, checksum, input, env)
	return vm.result(env, ret, err)
}

// RunNative runs program in the host process with the same syscalls and gas
// accounting as Execute. name only labels the log output.
//
// ExecutionTimeout and ctx are checked at every syscall only. A program that
// never calls the host is not interrupted and RunNative waits for it to return.
func (vm *VM) RunNative(ctx context.Context, name string, program Program, input []byte, gasLimit uint64) (*ExecutionResult, error) {
	if vm.config.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, vm.config.ExecutionTimeout)
		defer cancel()
	}
	env := vm.newEnvironment(gasLimit, vm.logger.With().Str("program", name).Logger())
	ret, err := native.Run(ctx, env, program, input)
	return vm.result(env, ret, err)
}

func (vm *VM) newEnvironment(gasLimit uint64, logger zerolog.Logger) *host.Environment {
	if gasLimit == 0 {
		gasLimit = vm.config.GasLimit
	}
	return host.NewEnvironment(gas.NewDefaultMeter(gasLimit), logger)
}

func (vm *VM) result(env *host.Environment, ret uint64, err error) (*ExecutionResult, error) {
	if err != nil {
		return nil, err
	}
	res := &ExecutionResult{
		ReturnCode: ret,
		GasUsed:    env.Gas.Consumed(),
		Logs:       env.Logs(),
	}
	vm.logger.Debug().
		Uint64("return_code", res.ReturnCode).
		Uint64("gas_used", res.GasUsed).
		Msg("execution finished")
	return res, nil
}
