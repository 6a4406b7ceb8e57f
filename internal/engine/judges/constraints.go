package judges

import (
	"context"
	"fmt"
	"reflect"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
)

// CheckedConstraintFields are compared against the first search call.
// max_layover_minutes is required in the pack but not checked here.
var CheckedConstraintFields = []string{
	"origin",
	"destination",
	"date",
	"earliest_departure_time",
	"currency",
}

// ConstraintsJudge checks that the first search call carries the scenario's
// constraints verbatim.
type ConstraintsJudge struct{}

func NewConstraintsJudge() *ConstraintsJudge {
	return &ConstraintsJudge{}
}

func (j *ConstraintsJudge) Name() string {
	return "constraints"
}

func (j *ConstraintsJudge) Category() engine.Category {
	return engine.CategoryConstraints
}

func (j *ConstraintsJudge) Evaluate(_ context.Context, req *engine.EvalRequest) (*engine.EvalResult, error) {
	if !req.Policy.RequiresSearch {
		return &engine.EvalResult{Outcome: engine.OutcomeNotApplicable}, nil
	}

	fail := &engine.EvalResult{
		Outcome: engine.OutcomeFail,
		Note:    fmt.Sprintf("%s args do not match constraints", req.Config.SearchTool),
	}

	for _, call := range req.Calls {
		if call.Name != req.Config.SearchTool {
			continue
		}
		if constraintsMatch(req.Scenario.Constraints, call.Arguments) {
			return &engine.EvalResult{Outcome: engine.OutcomePass}, nil
		}
		return fail, nil
	}

	// No search call at all.
	return fail, nil
}

func constraintsMatch(constraints, args map[string]any) bool {
	for _, field := range CheckedConstraintFields {
		want, ok := constraints[field]
		if !ok {
			return false
		}
		got, ok := args[field]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}
