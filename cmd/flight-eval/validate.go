package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the pack for structural consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := a.loadValidatedPack(cmd.Context(), out)
			if err != nil {
				return err
			}
			tools, scenarios, goldens := p.Stats()
			fmt.Fprintln(out, "Pack validated successfully.")
			fmt.Fprintf(out, "Tools: %d | Scenarios: %d | Golden: %d\n", tools, scenarios, goldens)
			return nil
		},
	}
}
