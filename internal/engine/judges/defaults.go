package judges

import "github.com/triage-ai/palisade/flight_eval/internal/engine"

// Defaults returns the standard judges in report order.
func Defaults() []engine.Judge {
	return []engine.Judge{
		NewToolOrderJudge(),
		NewConstraintsJudge(),
		NewHallucinationJudge(),
		NewClarificationJudge(),
		NewCommitGateJudge(),
	}
}
