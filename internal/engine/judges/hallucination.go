package judges

import (
	"context"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/engine/detectors"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
)

// NoteHallucination is recorded when flight specifics are detected.
const NoteHallucination = "Possible hallucinated flight details"

// HallucinationJudge flags concrete flight facts in the agent's prose.
// Tool-call lines are the agent's own arguments and are not scanned.
type HallucinationJudge struct {
	detector *detectors.FlightSpecificsDetector
}

func NewHallucinationJudge() *HallucinationJudge {
	return &HallucinationJudge{detector: detectors.NewFlightSpecificsDetector()}
}

// NewHallucinationJudgeWithDetector uses a custom detector.
func NewHallucinationJudgeWithDetector(d *detectors.FlightSpecificsDetector) *HallucinationJudge {
	return &HallucinationJudge{detector: d}
}

func (j *HallucinationJudge) Name() string {
	return "hallucination"
}

func (j *HallucinationJudge) Category() engine.Category {
	return engine.CategoryHallucination
}

func (j *HallucinationJudge) Evaluate(_ context.Context, req *engine.EvalRequest) (*engine.EvalResult, error) {
	if req.Policy.AllowFactualMentions {
		return &engine.EvalResult{Outcome: engine.OutcomeNotApplicable}, nil
	}

	if hit, _ := j.detector.Detect(transcript.Prose(req.Transcript)); hit {
		return &engine.EvalResult{Outcome: engine.OutcomeFail, Note: NoteHallucination}, nil
	}
	return &engine.EvalResult{Outcome: engine.OutcomePass}, nil
}
