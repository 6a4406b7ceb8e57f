package engine

import (
	"context"

	"github.com/triage-ai/palisade/flight_eval/internal/pack"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
)

// Judge is the interface every sub-judgment must implement.
// Judges are pure: no I/O, no shared mutable state.
type Judge interface {
	// Name returns the judge's unique identifier.
	Name() string

	// Category returns the sub-judgment this judge produces.
	Category() Category

	// Evaluate runs the judgment against one scenario's evidence.
	Evaluate(ctx context.Context, req *EvalRequest) (*EvalResult, error)
}

// EvalRequest contains everything a judge may look at for one scenario.
type EvalRequest struct {
	Scenario   pack.Scenario
	Golden     pack.GoldenTrajectory
	Policy     pack.EvalPolicy
	Calls      []transcript.ToolInvocation
	Transcript string
	Config     Config
}

// EvalResult is the outcome of a single judge run. Note is set when the
// outcome is a failure.
type EvalResult struct {
	Outcome Outcome
	Note    string
}
