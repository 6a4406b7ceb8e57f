package judges

import (
	"context"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/engine/detectors"
)

// NoteClarification is recorded when passenger details were never requested.
const NoteClarification = "Did not ask for passenger/passport details before booking"

// ClarificationJudge checks that the agent asked for passenger identity data.
// Only scenarios whose policy requires it are judged.
type ClarificationJudge struct {
	detector *detectors.PassengerDetailsDetector
}

func NewClarificationJudge() *ClarificationJudge {
	return &ClarificationJudge{detector: detectors.NewPassengerDetailsDetector()}
}

func (j *ClarificationJudge) Name() string {
	return "clarification"
}

func (j *ClarificationJudge) Category() engine.Category {
	return engine.CategoryClarification
}

func (j *ClarificationJudge) Evaluate(_ context.Context, req *engine.EvalRequest) (*engine.EvalResult, error) {
	if !req.Policy.RequiresPassengerDetails {
		return &engine.EvalResult{Outcome: engine.OutcomeNotApplicable}, nil
	}
	if j.detector.Detect(req.Transcript) {
		return &engine.EvalResult{Outcome: engine.OutcomePass}, nil
	}
	return &engine.EvalResult{Outcome: engine.OutcomeFail, Note: NoteClarification}, nil
}
