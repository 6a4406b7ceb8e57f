package judges

import (
	"context"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
)

// NoteToolOrder is recorded when the required call order is not met.
const NoteToolOrder = "Tool order incorrect/missing required calls"

// MatchInOrder reports whether required appears in observed as a
// subsequence. Each required name is searched for starting just after the
// previous match; unrelated calls in between are allowed.
func MatchInOrder(required, observed []string) bool {
	idx := 0
	for _, req := range required {
		found := false
		for idx < len(observed) {
			name := observed[idx]
			idx++
			if name == req {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ToolOrderJudge checks must_call_tools_in_order from the golden trajectory.
type ToolOrderJudge struct{}

func NewToolOrderJudge() *ToolOrderJudge {
	return &ToolOrderJudge{}
}

func (j *ToolOrderJudge) Name() string {
	return "tool_order"
}

func (j *ToolOrderJudge) Category() engine.Category {
	return engine.CategoryToolOrder
}

func (j *ToolOrderJudge) Evaluate(_ context.Context, req *engine.EvalRequest) (*engine.EvalResult, error) {
	required := req.Golden.MustCallToolsInOrder()
	if len(required) == 0 {
		return &engine.EvalResult{Outcome: engine.OutcomePass}, nil
	}

	if !MatchInOrder(required, transcript.Names(req.Calls)) {
		return &engine.EvalResult{Outcome: engine.OutcomeFail, Note: NoteToolOrder}, nil
	}
	return &engine.EvalResult{Outcome: engine.OutcomePass}, nil
}
