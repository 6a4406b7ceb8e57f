package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/triage-ai/palisade/flight_eval/internal/preview"
)

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview [scenario-id...]",
		Short: "Print scenarios with their golden trajectories",
		Long: `Preview prints each scenario's prompt, constraints and expected golden
trajectory. With no arguments every scenario is printed in pack order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			p, err := a.loadValidatedPack(cmd.Context(), out)
			if err != nil {
				return err
			}

			want := make(map[string]bool, len(args))
			var unknown []string
			for _, id := range args {
				if _, ok := p.Scenario(id); !ok {
					unknown = append(unknown, id)
				}
				want[id] = true
			}
			if len(unknown) > 0 {
				return fmt.Errorf("unknown scenario id(s): %s", strings.Join(unknown, ", "))
			}
			for _, sc := range p.Scenarios() {
				if len(want) > 0 && !want[sc.ID] {
					continue
				}
				g, _ := p.Golden(sc.ID)
				if err := preview.Print(out, sc, g); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
