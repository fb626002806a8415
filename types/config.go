package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultGasLimit is the compute budget of an execution when the caller does not set one.
	DefaultGasLimit uint64 = 200_000
	// DefaultExecutionTimeout bounds the wall clock time of a single execution.
	DefaultExecutionTimeout = 5 * time.Second
)

// VMConfig defines the configuration for the VM.
type VMConfig struct {
	Cache            CacheOptions  `json:"cache" yaml:"cache"`
	GasLimit         uint64        `json:"gas_limit" yaml:"gas_limit"`
	ExecutionTimeout time.Duration `json:"execution_timeout" yaml:"execution_timeout"`
	Debug            bool          `json:"debug" yaml:"debug"`
}

type CacheOptions struct {
	// BaseDir holds the persistent code store. Empty keeps everything in memory.
	BaseDir                  string `json:"base_dir" yaml:"base_dir"`
	InstanceMemoryLimitBytes Size   `json:"instance_memory_limit_bytes" yaml:"instance_memory_limit_bytes"`
}

// DefaultVMConfig returns an in-memory configuration suitable for tests and the CLI.
func DefaultVMConfig() VMConfig {
	return VMConfig{
		Cache: CacheOptions{
			InstanceMemoryLimitBytes: NewSizeMebi(32),
		},
		GasLimit:         DefaultGasLimit,
		ExecutionTimeout: DefaultExecutionTimeout,
	}
}

// LoadVMConfig reads a YAML config file. Fields missing from the file keep their defaults.
func LoadVMConfig(path string) (VMConfig, error) {
	config := DefaultVMConfig()
	bz, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("could not read config: %w", err)
	}
	if err := yaml.Unmarshal(bz, &config); err != nil {
		return config, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	return config, config.Validate()
}

// Validate checks the configuration for values the VM cannot run with.
func (c VMConfig) Validate() error {
	if c.GasLimit == 0 {
		return errors.New("gas_limit must be positive")
	}
	if c.ExecutionTimeout <= 0 {
		return errors.New("execution_timeout must be positive")
	}
	if c.Cache.InstanceMemoryLimitBytes.Bytes() < WasmPageSize {
		return fmt.Errorf("instance_memory_limit_bytes must be at least one page (%d bytes)", WasmPageSize)
	}
	return nil
}

// WasmPageSize is the size of a Wasm linear memory page.
const WasmPageSize = 65536

type Size struct{ uint32 }

func (s Size) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.uint32)
}

func (s *Size) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &s.uint32)
}

func (s Size) MarshalYAML() (interface{}, error) {
	return s.uint32, nil
}

func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	return value.Decode(&s.uint32)
}

// Bytes returns the size in bytes.
func (s Size) Bytes() uint32 {
	return s.uint32
}

// Pages returns the number of whole Wasm pages that fit into the size.
func (s Size) Pages() uint32 {
	return s.uint32 / WasmPageSize
}

func NewSize(v uint32) Size {
	return Size{v}
}

func NewSizeKibi(v uint32) Size {
	return Size{v * 1024}
}

func NewSizeMebi(v uint32) Size {
	return Size{v * 1024 * 1024}
}
