// Package report flattens verdicts into the fixed row contract consumed by
// CSV writers and other sinks.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/pack"
)

// TimestampLayout is ISO-8601 UTC with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// NotesSeparator joins notes in the notes column.
const NotesSeparator = "; "

// Headers is the fixed column order.
var Headers = []string{
	"scenario_id",
	"model_name",
	"run_timestamp",
	"tool_order_ok",
	"constraints_ok",
	"hallucination",
	"asked_clarifications",
	"final_label",
	"notes",
}

// Row is one flat result record.
type Row struct {
	ScenarioID          string
	ModelName           string
	RunTimestamp        string
	ToolOrderOK         string
	ConstraintsOK       string
	Hallucination       string
	AskedClarifications string
	FinalLabel          string
	Notes               string
}

// FromVerdict collapses a verdict's tri-state outcomes to Y/N.
// Not-applicable counts as "no violation" for every column.
func FromVerdict(v *engine.Verdict) Row {
	return Row{
		ScenarioID:          v.ScenarioID,
		ModelName:           v.ModelName,
		RunTimestamp:        FormatTimestamp(v.Timestamp),
		ToolOrderOK:         yesNo(v.ToolOrder.OK()),
		ConstraintsOK:       yesNo(v.Constraints.OK()),
		Hallucination:       yesNo(!v.Hallucination.OK()),
		AskedClarifications: yesNo(v.Clarification.OK()),
		FinalLabel:          string(v.Label),
		Notes:               strings.Join(v.Notes, NotesSeparator),
	}
}

// Record returns the row's values in Headers order.
func (r Row) Record() []string {
	return []string{
		r.ScenarioID,
		r.ModelName,
		r.RunTimestamp,
		r.ToolOrderOK,
		r.ConstraintsOK,
		r.Hallucination,
		r.AskedClarifications,
		r.FinalLabel,
		r.Notes,
	}
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

// WriteCSV writes a header line followed by one line per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}

// WriteTemplate writes a blank results sheet with one row per scenario, to
// be filled in after a manual model run.
func WriteTemplate(w io.Writer, scenarios []pack.Scenario, now time.Time) error {
	rows := make([]Row, 0, len(scenarios))
	ts := FormatTimestamp(now)
	for _, sc := range scenarios {
		rows = append(rows, Row{ScenarioID: sc.ID, RunTimestamp: ts})
	}
	return WriteCSV(w, rows)
}
