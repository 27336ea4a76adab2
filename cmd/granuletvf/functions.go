package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "List the registered table functions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, e, err := setup(cmd)
		if err != nil {
			return err
		}
		for _, sig := range e.Functions().Functions() {
			fmt.Fprintln(cmd.OutOrStdout(), sig.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(functionsCmd)
}
