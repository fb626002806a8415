package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store <file.wasm>",
	Short: "Validate and store a Wasm program, printing its checksum",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wasm, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		vm, config, err := newVM(cmd)
		if err != nil {
			return err
		}
		defer vm.Cleanup()

		if config.Cache.BaseDir == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: no --home given, code is not persisted")
		}
		checksum, err := vm.StoreCode(wasm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), checksum)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the checksums of stored programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		vm, _, err := newVM(cmd)
		if err != nil {
			return err
		}
		defer vm.Cleanup()

		checksums, err := vm.Checksums()
		if err != nil {
			return err
		}
		for _, checksum := range checksums {
			fmt.Fprintln(cmd.OutOrStdout(), checksum)
		}
		return nil
	},
}
