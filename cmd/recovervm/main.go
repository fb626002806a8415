// Command recovervm stores and runs guest programs that use the secp256k1
// public key recovery syscall.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/CosmWasm/recovervm"
	"github.com/CosmWasm/recovervm/types"
)

var (
	configPath string
	homeDir    string
	verbose    bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "recovervm",
	Short:         "Run secp256k1 recovery guest programs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "Directory of the persistent code store (default: in memory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(selftestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints err and, for host side aborts, the structured system error
// so scripts can tell out of gas apart from a missing program.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, "Error:", err)
	if sys := types.ToSystemError(err); sys != nil {
		if bz, jerr := json.Marshal(sys); jerr == nil {
			fmt.Fprintf(w, "system error: %s\n", bz)
		}
	}
}

// loadConfig applies the config file and the command line flags on top of the defaults.
func loadConfig() (types.VMConfig, error) {
	config := types.DefaultVMConfig()
	if configPath != "" {
		var err error
		config, err = types.LoadVMConfig(configPath)
		if err != nil {
			return config, err
		}
	}
	if homeDir != "" {
		config.Cache.BaseDir = homeDir
	}
	if verbose {
		config.Debug = true
	}
	return config, nil
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

func newVM(cmd *cobra.Command) (*recovervm.VM, types.VMConfig, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, config, err
	}
	vm, err := recovervm.NewVM(config, newLogger(cmd))
	if err != nil {
		return nil, config, fmt.Errorf("failed to create VM: %w", err)
	}
	return vm, config, nil
}

func printResult(cmd *cobra.Command, res *types.ExecutionResult) error {
	out := cmd.OutOrStdout()
	for _, line := range res.Logs {
		fmt.Fprintf(out, "log: %s\n", line)
	}
	fmt.Fprintf(out, "return code: %d\n", res.ReturnCode)
	fmt.Fprintf(out, "gas used:    %d\n", res.GasUsed)
	if !res.Succeeded() {
		return fmt.Errorf("program returned %d", res.ReturnCode)
	}
	return nil
}
