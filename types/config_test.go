package types

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigJSON(t *testing.T) {
	config := VMConfig{
		Cache: CacheOptions{
			BaseDir:                  "/tmp",
			InstanceMemoryLimitBytes: NewSize(100),
		},
		GasLimit:         5,
		ExecutionTimeout: time.Second,
	}
	expected := `{"cache":{"base_dir":"/tmp","instance_memory_limit_bytes":100},"gas_limit":5,"execution_timeout":1000000000,"debug":false}`

	bz, err := json.Marshal(config)
	require.NoError(t, err)
	assert.Equal(t, expected, string(bz))

	var decoded VMConfig
	require.NoError(t, json.Unmarshal(bz, &decoded))
	assert.Equal(t, config, decoded)
}

func TestLoadVMConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
cache:
  base_dir: /var/lib/recovervm
  instance_memory_limit_bytes: 1048576
gas_limit: 50000
execution_timeout: 2s
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	config, err := LoadVMConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/recovervm", config.Cache.BaseDir)
	assert.Equal(t, uint32(1048576), config.Cache.InstanceMemoryLimitBytes.Bytes())
	assert.Equal(t, uint32(16), config.Cache.InstanceMemoryLimitBytes.Pages())
	assert.Equal(t, uint64(50000), config.GasLimit)
	assert.Equal(t, 2*time.Second, config.ExecutionTimeout)
	assert.True(t, config.Debug)
}

func TestLoadVMConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("debug: true\n"), 0o600))

	config, err := LoadVMConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultGasLimit, config.GasLimit)
	assert.Equal(t, DefaultExecutionTimeout, config.ExecutionTimeout)
	assert.Equal(t, NewSizeMebi(32), config.Cache.InstanceMemoryLimitBytes)
}

func TestVMConfigValidate(t *testing.T) {
	require.NoError(t, DefaultVMConfig().Validate())

	config := DefaultVMConfig()
	config.GasLimit = 0
	require.ErrorContains(t, config.Validate(), "gas_limit")

	config = DefaultVMConfig()
	config.ExecutionTimeout = 0
	require.ErrorContains(t, config.Validate(), "execution_timeout")

	config = DefaultVMConfig()
	config.Cache.InstanceMemoryLimitBytes = NewSizeKibi(1)
	require.ErrorContains(t, config.Validate(), "instance_memory_limit_bytes")
}

func TestLoadVMConfigMissingFile(t *testing.T) {
	_, err := LoadVMConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
