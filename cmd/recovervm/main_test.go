package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CosmWasm/recovervm/internal/wasmtest"
	"github.com/CosmWasm/recovervm/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configPath, homeDir, verbose = "", "", false
	runInput, runGasLimit = "", 0

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeModule(t *testing.T, opts wasmtest.Options) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.wasm")
	require.NoError(t, os.WriteFile(path, wasmtest.ConformanceModule(opts), 0o644))
	return path
}

func TestSelftest(t *testing.T) {
	out, err := execute(t, "selftest")
	require.NoError(t, err)
	assert.Contains(t, out, "return code: 0")
}

func TestRunFile(t *testing.T) {
	out, err := execute(t, "run", writeModule(t, wasmtest.GoldenOptions()))
	require.NoError(t, err)
	assert.Contains(t, out, "log: "+wasmtest.Message)
	assert.Contains(t, out, "return code: 0")
}

func TestRunHalt(t *testing.T) {
	opts := wasmtest.GoldenOptions()
	opts.RecoveryID = 0
	_, err := execute(t, "run", writeModule(t, opts))

	var halt *types.HaltError
	require.ErrorAs(t, err, &halt)
	assert.Equal(t, uint64(wasmtest.CompareLine), halt.Location.Line)
}

func TestRunInvalidInput(t *testing.T) {
	_, err := execute(t, "run", "--input", "zz", writeModule(t, wasmtest.GoldenOptions()))
	require.ErrorContains(t, err, "invalid --input")
}

func TestStoreListRun(t *testing.T) {
	home := t.TempDir()
	wasm := writeModule(t, wasmtest.GoldenOptions())

	out, err := execute(t, "store", "--home", home, wasm)
	require.NoError(t, err)
	checksum := strings.TrimSpace(out)
	_, err = types.ParseChecksum(checksum)
	require.NoError(t, err)

	out, err = execute(t, "list", "--home", home)
	require.NoError(t, err)
	assert.Equal(t, checksum+"\n", out)

	out, err = execute(t, "run", "--home", home, checksum)
	require.NoError(t, err)
	assert.Contains(t, out, "return code: 0")
}

func TestConfigFile(t *testing.T) {
	config := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte("gas_limit: 1000\n"), 0o644))

	_, err := execute(t, "run", "--config", config, writeModule(t, wasmtest.GoldenOptions()))
	var oog types.OutOfGasError
	require.ErrorAs(t, err, &oog)

	_, err = execute(t, "run", "--config", config, "--gas", "100000", writeModule(t, wasmtest.GoldenOptions()))
	require.NoError(t, err)
}

func TestReportError(t *testing.T) {
	_, err := execute(t, "run", "--gas", "1000", writeModule(t, wasmtest.GoldenOptions()))
	require.Error(t, err)

	var buf bytes.Buffer
	reportError(&buf, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Error: "))
	assert.True(t, strings.HasPrefix(lines[1], `system error: {"out_of_gas":{"wanted":`), lines[1])

	buf.Reset()
	reportError(&buf, types.NoSuchCode{})
	assert.Contains(t, buf.String(), `system error: {"no_such_code":{"checksum":`)

	// a guest halt is not a system error
	opts := wasmtest.GoldenOptions()
	opts.RecoveryID = 0
	_, err = execute(t, "run", writeModule(t, opts))
	require.Error(t, err)
	buf.Reset()
	reportError(&buf, err)
	assert.NotContains(t, buf.String(), "system error:")
}
