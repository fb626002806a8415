package wazeroimpl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	dbm "github.com/cometbft/cometbft-db"
	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"golang.org/x/sys/unix"

	"github.com/CosmWasm/recovervm/internal/runtime/constants"
	rterrors "github.com/CosmWasm/recovervm/internal/runtime/error"
	"github.com/CosmWasm/recovervm/internal/runtime/host"
	"github.com/CosmWasm/recovervm/internal/runtime/memory"
	"github.com/CosmWasm/recovervm/internal/runtime/validation"
	"github.com/CosmWasm/recovervm/types"
)

const (
	codeDBName   = "code"
	lockFileName = "exclusive.lock"
)

// Cache manages a wazero runtime, compiled modules, and the code store.
type Cache struct {
	mu      sync.RWMutex
	runtime wazero.Runtime
	// modules holds compiled modules by checksum hex
	modules map[string]wazero.CompiledModule
	// store keeps the original Wasm bytes by checksum
	store dbm.DB
	// lockfile holds the exclusive lock on baseDir
	lockfile *os.File
	baseDir  string
	timeout  time.Duration
	logger   zerolog.Logger
}

// InitCache creates a wazero runtime with the host functions registered and opens
// the code store. With an empty BaseDir the store lives in memory.
func InitCache(config types.VMConfig, logger zerolog.Logger) (*Cache, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		lf    *os.File
		store dbm.DB
		err   error
	)
	base := config.Cache.BaseDir
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return nil, fmt.Errorf("could not create base directory: %w", err)
		}
		lf, err = lockBaseDir(base)
		if err != nil {
			return nil, err
		}
		store, err = dbm.NewDB(codeDBName, dbm.GoLevelDBBackend, base)
		if err != nil {
			lf.Close()
			return nil, fmt.Errorf("could not open code store: %w", err)
		}
	} else {
		store = dbm.NewMemDB()
	}

	ctx := context.Background()
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().
		WithMemoryLimitPages(config.Cache.InstanceMemoryLimitBytes.Pages()).
		WithCloseOnContextDone(true))
	c := &Cache{
		runtime:  r,
		modules:  make(map[string]wazero.CompiledModule),
		store:    store,
		lockfile: lf,
		baseDir:  base,
		timeout:  config.ExecutionTimeout,
		logger:   logger,
	}
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, r); err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("could not instantiate WASI: %w", err)
	}
	if _, err := host.RegisterHostFunctions(ctx, r); err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("could not register host functions: %w", err)
	}
	return c, nil
}

func lockBaseDir(base string) (*os.File, error) {
	lockPath := filepath.Join(base, lockFileName)
	lf, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", lockFileName, err)
	}
	if _, err := lf.WriteString("exclusive lock for recovervm\n"); err != nil {
		lf.Close()
		return nil, fmt.Errorf("error writing to %s: %w", lockFileName, err)
	}
	if err := unix.Flock(int(lf.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		lf.Close()
		return nil, fmt.Errorf("could not lock %s; is another VM running? %w", lockFileName, err)
	}
	return lf, nil
}

// Close releases the runtime, the code store and the directory lock.
func (c *Cache) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.runtime != nil {
		errs = append(errs, c.runtime.Close(ctx))
		c.runtime = nil
	}
	if c.store != nil {
		errs = append(errs, c.store.Close())
		c.store = nil
	}
	if c.lockfile != nil {
		errs = append(errs, c.lockfile.Close())
		c.lockfile = nil
	}
	c.modules = map[string]wazero.CompiledModule{}
	return errors.Join(errs...)
}

// StoreCode validates, compiles and persists wasm. Storing the same code twice
// is a no-op.
func (c *Cache) StoreCode(ctx context.Context, wasm []byte) (types.Checksum, error) {
	checksum, err := types.CreateChecksum(wasm)
	if err != nil {
		return types.Checksum{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := checksum.String()
	if _, ok := c.modules[key]; ok {
		return checksum, nil
	}
	compiled, err := c.compile(ctx, wasm)
	if err != nil {
		return types.Checksum{}, err
	}
	if err := c.store.SetSync(checksum.Bytes(), wasm); err != nil {
		compiled.Close(ctx)
		return types.Checksum{}, fmt.Errorf("failed to persist code: %w", err)
	}
	c.modules[key] = compiled
	c.logger.Debug().Str("checksum", key).Int("size", len(wasm)).Msg("stored code")
	return checksum, nil
}

// GetCode returns the original Wasm bytes for the given checksum.
func (c *Cache) GetCode(checksum types.Checksum) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.store.Get(checksum.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to read code: %w", err)
	}
	if data == nil {
		return nil, types.NoSuchCode{Checksum: checksum}
	}
	return append([]byte(nil), data...), nil
}

// RemoveCode removes stored Wasm and the compiled module for the given checksum.
func (c *Cache) RemoveCode(ctx context.Context, checksum types.Checksum) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ok, err := c.store.Has(checksum.Bytes())
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}
	if !ok {
		return types.NoSuchCode{Checksum: checksum}
	}
	if err := c.store.DeleteSync(checksum.Bytes()); err != nil {
		return fmt.Errorf("failed to remove code: %w", err)
	}
	key := checksum.String()
	if compiled, ok := c.modules[key]; ok {
		compiled.Close(ctx)
		delete(c.modules, key)
	}
	return nil
}

// Checksums lists the checksums of all stored code in ascending order.
func (c *Cache) Checksums() ([]types.Checksum, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	it, err := c.store.Iterator(nil, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []types.Checksum
	for ; it.Valid(); it.Next() {
		checksum, err := types.NewChecksum(it.Key())
		if err != nil {
			return nil, fmt.Errorf("corrupt code store key %x: %w", it.Key(), err)
		}
		out = append(out, checksum)
	}
	return out, it.Error()
}

func (c *Cache) compile(ctx context.Context, wasm []byte) (wazero.CompiledModule, error) {
	compiled, err := c.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, fmt.Errorf("failed to compile Wasm: %w", err)
	}
	if err := validation.AnalyzeForValidation(compiled); err != nil {
		compiled.Close(ctx)
		return nil, err
	}
	return compiled, nil
}

// getModule returns the compiled module for the checksum, compiling code that is
// only present in the persistent store.
func (c *Cache) getModule(ctx context.Context, checksum types.Checksum) (wazero.CompiledModule, error) {
	key := checksum.String()
	c.mu.RLock()
	compiled, ok := c.modules[key]
	c.mu.RUnlock()
	if ok {
		return compiled, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if compiled, ok := c.modules[key]; ok {
		return compiled, nil
	}
	wasm, err := c.store.Get(checksum.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to read code: %w", err)
	}
	if wasm == nil {
		return nil, types.NoSuchCode{Checksum: checksum}
	}
	compiled, err = c.compile(ctx, wasm)
	if err != nil {
		return nil, err
	}
	c.modules[key] = compiled
	c.logger.Debug().Str("checksum", key).Msg("compiled code from store")
	return compiled, nil
}

// Execute instantiates the code, places input into guest memory and calls the entry
// point with env as the execution environment. A halt is returned as *types.HaltError.
func (c *Cache) Execute(ctx context.Context, checksum types.Checksum, input []byte, env *host.Environment) (uint64, error) {
	compiled, err := c.getModule(ctx, checksum)
	if err != nil {
		return 0, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	ctx = host.WithEnvironment(ctx, env)

	// anonymous instances so executions of the same code can run side by side
	mod, err := c.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().
		WithName("").
		WithStartFunctions())
	if err != nil {
		return 0, c.executionError(ctx, env, err)
	}
	defer mod.Close(context.Background())

	if init := mod.ExportedFunction(constants.InitializeExport); init != nil {
		if _, err := init.Call(ctx); err != nil {
			return 0, c.executionError(ctx, env, err)
		}
	}

	mm, err := memory.NewMemoryManager(mod)
	if err != nil {
		return 0, err
	}
	inputPtr, err := mm.PlaceInput(ctx, input)
	if err != nil {
		return 0, c.executionError(ctx, env, err)
	}

	results, err := mod.ExportedFunction(constants.EntrypointExport).Call(ctx, api.EncodeU32(inputPtr))
	if err != nil {
		return 0, c.executionError(ctx, env, err)
	}
	return results[0], nil
}

// executionError maps a failed guest call to the error surfaced by the VM.
func (c *Cache) executionError(ctx context.Context, env *host.Environment, err error) error {
	if halt := env.Halted(); halt != nil {
		return halt
	}
	if aborted := env.Aborted(); aborted != nil {
		return rterrors.ToVMError(aborted)
	}
	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		switch exitErr.ExitCode() {
		case sys.ExitCodeDeadlineExceeded, sys.ExitCodeContextCanceled:
			return &rterrors.RuntimeError{Msg: "execution interrupted", Err: ctx.Err()}
		default:
			return &rterrors.RuntimeError{Msg: fmt.Sprintf("program exited with code %d", exitErr.ExitCode())}
		}
	}
	c.logger.Debug().Err(err).Msg("guest trapped")
	return &rterrors.RuntimeError{Msg: "execution failed", Err: err}
}
