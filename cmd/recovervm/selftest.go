package main

import (
	"github.com/spf13/cobra"

	"github.com/CosmWasm/recovervm/programs/secp256k1recover"
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the built-in secp256k1 recovery conformance program natively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		vm, _, err := newVM(cmd)
		if err != nil {
			return err
		}
		defer vm.Cleanup()

		res, err := vm.RunNative(cmd.Context(), "secp256k1recover", secp256k1recover.Entrypoint, nil, 0)
		if err != nil {
			return err
		}
		return printResult(cmd, res)
	},
}
