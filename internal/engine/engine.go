package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/triage-ai/palisade/flight_eval/internal/pack"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
	"go.uber.org/zap"
)

var (
	// ErrUnknownScenario is returned when the pack has no scenario with the id.
	ErrUnknownScenario = errors.New("unknown scenario")
	// ErrMissingGolden is returned when the scenario has no golden trajectory.
	ErrMissingGolden = errors.New("missing golden trajectory")
)

// EvalEngine runs every judge over one scenario and builds its verdict.
// It holds no per-scenario state and is safe for concurrent use.
type EvalEngine struct {
	judges []Judge
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

// NewEvalEngine creates an engine with the given judges. Judge order sets
// note order.
func NewEvalEngine(judges []Judge, cfg Config, logger *zap.Logger) *EvalEngine {
	return &EvalEngine{
		judges: judges,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock returns a copy of the engine that stamps verdicts with now().
func (e *EvalEngine) WithClock(now func() time.Time) *EvalEngine {
	cp := *e
	cp.now = now
	return &cp
}

// Config returns the engine's tool configuration.
func (e *EvalEngine) Config() Config {
	return e.cfg
}

// Evaluate grades one transcript for scenarioID.
//
// A malformed tool-call line fails the whole scenario with an error that
// matches transcript.ErrMalformedToolCall.
func (e *EvalEngine) Evaluate(ctx context.Context, p *pack.Pack, scenarioID, modelName, text string) (*Verdict, error) {
	sc, ok := p.Scenario(scenarioID)
	if !ok {
		return nil, fmt.Errorf("Evaluate %s: %w", scenarioID, ErrUnknownScenario)
	}
	golden, ok := p.Golden(scenarioID)
	if !ok {
		return nil, fmt.Errorf("Evaluate %s: %w", scenarioID, ErrMissingGolden)
	}

	calls, err := transcript.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("Evaluate %s: %w", scenarioID, err)
	}

	req := &EvalRequest{
		Scenario:   sc,
		Golden:     golden,
		Policy:     ResolvePolicy(sc),
		Calls:      calls,
		Transcript: text,
		Config:     e.cfg,
	}

	v := &Verdict{
		ScenarioID:    scenarioID,
		ModelName:     modelName,
		Timestamp:     e.now().UTC(),
		ToolOrder:     OutcomeNotApplicable,
		Constraints:   OutcomeNotApplicable,
		Hallucination: OutcomeNotApplicable,
		Clarification: OutcomeNotApplicable,
		CommitGate:    OutcomeNotApplicable,
		Invocations:   calls,
		Policy:        req.Policy,
	}

	results := make([]JudgeResult, 0, len(e.judges))
	for _, j := range e.judges {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("Evaluate %s: %w", scenarioID, err)
		}
		res, err := j.Evaluate(ctx, req)
		if err != nil {
			e.logger.Warn("judge error",
				zap.String("scenario_id", scenarioID),
				zap.String("judge", j.Name()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("Evaluate %s: judge %s: %w", scenarioID, j.Name(), err)
		}
		if res == nil {
			continue
		}
		results = append(results, JudgeResult{
			Judge:    j.Name(),
			Category: j.Category(),
			Outcome:  res.Outcome,
			Details:  res.Note,
		})
		v.set(j.Category(), res.Outcome)
	}

	agg := Aggregate(results)
	v.Label = agg.Label
	v.Notes = agg.Notes

	e.logger.Debug("scenario evaluated",
		zap.String("scenario_id", scenarioID),
		zap.String("model_name", modelName),
		zap.String("final_label", string(v.Label)),
		zap.Int("invocations", len(calls)),
	)
	return v, nil
}

func (v *Verdict) set(c Category, o Outcome) {
	switch c {
	case CategoryToolOrder:
		v.ToolOrder = o
	case CategoryConstraints:
		v.Constraints = o
	case CategoryHallucination:
		v.Hallucination = o
	case CategoryClarification:
		v.Clarification = o
	case CategoryCommitGate:
		v.CommitGate = o
	}
}
