package engine

// AggregateResult holds the final label and the ordered diagnostic notes.
type AggregateResult struct {
	Label Label
	Notes []string
}

// Aggregate collapses judge results into a label.
//
// PASS iff no judge failed. Not-applicable outcomes never fail a scenario.
// Notes follow judge order and are diagnostic only.
func Aggregate(results []JudgeResult) AggregateResult {
	label := LabelPass
	var notes []string

	for _, r := range results {
		if r.Outcome != OutcomeFail {
			continue
		}
		label = LabelFail
		if r.Details != "" {
			notes = append(notes, r.Details)
		}
	}

	return AggregateResult{
		Label: label,
		Notes: notes,
	}
}
