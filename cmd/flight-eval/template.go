package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/triage-ai/palisade/flight_eval/internal/config"
	"github.com/triage-ai/palisade/flight_eval/internal/report"
)

func newTemplateCmd(a *app) *cobra.Command {
	output := config.DefaultTemplateOutput
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank results file to fill in after a model run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := a.loadValidatedPack(cmd.Context(), out)
			if err != nil {
				return err
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := report.WriteTemplate(f, p.Scenarios(), time.Now()); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Wrote results file:", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", output, "template file to write")
	return cmd
}
