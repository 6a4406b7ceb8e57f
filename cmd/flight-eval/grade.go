package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/engine/judges"
	"github.com/triage-ai/palisade/flight_eval/internal/report"
	"github.com/triage-ai/palisade/flight_eval/internal/runner"
	"go.uber.org/zap"
)

func newGradeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade transcripts and write scored results",
		Long: `Grade evaluates <transcripts>/<scenario_id>.txt for every scenario in the
pack and writes one scored row per transcript. Scenarios without a transcript are
skipped. A transcript with a malformed tool call is reported and the command exits
non-zero after writing the rows that did grade.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			p, err := a.loadValidatedPack(ctx, out)
			if err != nil {
				return err
			}

			writer := newEventWriter(a.cfg.ClickHouseDSN, a.logger)
			defer writer.Close()

			eng := engine.NewEvalEngine(judges.Defaults(), engine.Config{
				SearchTool: a.cfg.SearchTool,
				CommitTool: a.cfg.CommitTool,
			}, a.logger)

			res, err := runner.New(runner.Config{
				Engine:      eng,
				Transcripts: runner.DirTranscripts{Dir: a.cfg.TranscriptPath()},
				Writer:      writer,
				Workers:     a.cfg.Workers,
				Logger:      a.logger,
			}).Run(ctx, p, a.cfg.ModelName)
			if err != nil {
				return err
			}

			rows := make([]report.Row, 0, len(res.Verdicts))
			included := make([]string, 0, len(res.Verdicts))
			for _, v := range res.Verdicts {
				rows = append(rows, report.FromVerdict(v))
				included = append(included, v.ScenarioID)
			}

			f, err := os.Create(a.cfg.Output)
			if err != nil {
				return fmt.Errorf("create %s: %w", a.cfg.Output, err)
			}
			if err := report.WriteCSV(f, rows); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintln(out, "Wrote scored results:", a.cfg.Output)
			fmt.Fprintln(out, "Included scenarios:", included)
			if len(res.Skipped) > 0 {
				a.logger.Info("scenarios without transcripts skipped",
					zap.String("run_id", res.RunID),
					zap.Strings("scenario_ids", res.Skipped),
				)
			}

			if len(res.Failures) > 0 {
				for _, f := range res.Failures {
					fmt.Fprintf(out, "Could not grade %s: %v\n", f.ScenarioID, f.Err)
				}
				return errors.Join(errSilent, fmt.Errorf("%d scenario(s) could not be graded", len(res.Failures)))
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&a.cfg.TranscriptDir, "transcripts", a.cfg.TranscriptDir, "directory of <scenario_id>.txt transcripts (default <pack-dir>/model_outputs)")
	flags.StringVarP(&a.cfg.Output, "output", "o", a.cfg.Output, "scored results CSV to write")
	flags.StringVar(&a.cfg.ModelName, "model", a.cfg.ModelName, "model name recorded in every row")
	flags.IntVar(&a.cfg.Workers, "workers", a.cfg.Workers, "scenarios evaluated concurrently")
	return cmd
}
