package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CosmWasm/recovervm/types"
)

var (
	runInput    string
	runGasLimit uint64
)

var runCmd = &cobra.Command{
	Use:   "run <file.wasm | checksum>",
	Short: "Execute the entry point of a Wasm program",
	Long: `Execute the entry point of a Wasm program.

The argument is either a Wasm file, which is stored first, or the hex checksum
of code already in the store given by --home. The command fails when the
program halts or returns a nonzero code.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "Hex encoded input passed to the entry point")
	runCmd.Flags().Uint64Var(&runGasLimit, "gas", 0, "Gas limit (default: from config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	input, err := hex.DecodeString(runInput)
	if err != nil {
		return fmt.Errorf("invalid --input: %w", err)
	}

	vm, _, err := newVM(cmd)
	if err != nil {
		return err
	}
	defer vm.Cleanup()

	checksum, err := types.ParseChecksum(args[0])
	if err != nil {
		wasm, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return fmt.Errorf("%s is neither a checksum nor a readable file: %w", args[0], readErr)
		}
		checksum, err = vm.StoreCode(wasm)
		if err != nil {
			return err
		}
	}

	res, err := vm.Execute(cmd.Context(), checksum, input, runGasLimit)
	if err != nil {
		return err
	}
	return printResult(cmd, res)
}
