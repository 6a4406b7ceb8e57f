package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/triage-ai/palisade/flight_eval/internal/chread"
	"github.com/triage-ai/palisade/flight_eval/internal/report"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		days     int
		label    string
		scenario string
		runID    string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored verdicts and pass rates from ClickHouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.ClickHouseDSN == "" {
				return errors.New("history requires CLICKHOUSE_DSN")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			reader, err := chread.NewReader(a.cfg.ClickHouseDSN, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = reader.Close() }()

			summary, err := reader.GetSummary(ctx, a.cfg.ModelName, days)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Model: %s | Graded: %d | PASS: %d | FAIL: %d | Pass rate: %.1f%%\n",
				summary.ModelName, summary.Total, summary.Passes, summary.Fails, 100*summary.PassRate())

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tGRADED\tPASS\tRATE")
			for _, s := range summary.ByScenario {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\n", s.ScenarioID, s.Total, s.Passes, 100*s.PassRate())
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, n := range summary.TopNotes {
				fmt.Fprintf(out, "  %4d  %s\n", n.Count, n.Note)
			}

			start := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
			params := chread.ListParams{
				ModelName: &a.cfg.ModelName,
				StartTime: &start,
				PageSize:  limit,
			}
			if label != "" {
				params.FinalLabel = &label
			}
			if scenario != "" {
				params.ScenarioID = &scenario
			}
			if runID != "" {
				params.RunID = &runID
			}
			verdicts, total, err := reader.ListVerdicts(ctx, params)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nLatest %d of %d verdicts:\n", len(verdicts), total)
			tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tSCENARIO\tLABEL\tSOURCE\tNOTES")
			for _, v := range verdicts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					report.FormatTimestamp(v.Timestamp), v.ScenarioID, v.FinalLabel, v.Source,
					strings.Join(v.Notes, report.NotesSeparator))
			}
			return tw.Flush()
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&a.cfg.ModelName, "model", a.cfg.ModelName, "model name to report on")
	flags.IntVar(&days, "days", 7, "look-back window in days")
	flags.StringVar(&label, "label", "", "only list PASS or FAIL verdicts")
	flags.StringVar(&scenario, "scenario", "", "only list one scenario")
	flags.StringVar(&runID, "run", "", "only list one grading run")
	flags.IntVar(&limit, "limit", 20, "verdicts to list")
	return cmd
}
