package runner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/pack"
	"github.com/triage-ai/palisade/flight_eval/internal/storage"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many scenarios are evaluated at once.
const DefaultWorkers = 4

// Failure is a scenario that could not be evaluated.
type Failure struct {
	ScenarioID string
	Err        error
}

// Result is the outcome of one grading run.
type Result struct {
	RunID    string
	Verdicts []*engine.Verdict // scenario order
	Skipped  []string          // scenarios without a transcript
	Failures []Failure         // scenario order
}

// Runner grades every scenario in a pack that has a transcript.
type Runner struct {
	engine      *engine.EvalEngine
	transcripts TranscriptSource
	writer      storage.EventWriter
	workers     int
	logger      *zap.Logger
}

// Config configures a Runner.
type Config struct {
	Engine      *engine.EvalEngine
	Transcripts TranscriptSource
	Writer      storage.EventWriter // nil disables event persistence
	Workers     int
	Logger      *zap.Logger
}

// New creates a Runner.
func New(cfg Config) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runner{
		engine:      cfg.Engine,
		transcripts: cfg.Transcripts,
		writer:      cfg.Writer,
		workers:     workers,
		logger:      cfg.Logger,
	}
}

type slot struct {
	verdict *engine.Verdict
	skipped bool
	err     error
}

// Run evaluates all scenarios. The pack must already be validated.
// Per-scenario failures are collected and never stop other scenarios; the
// returned error is non-nil only if ctx is cancelled.
func (r *Runner) Run(ctx context.Context, p *pack.Pack, modelName string) (*Result, error) {
	runID := uuid.New().String()
	scenarios := p.Scenarios()
	slots := make([]slot, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, sc := range scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = r.evaluateOne(gctx, p, sc.ID, modelName)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	res := &Result{RunID: runID}
	for i, s := range slots {
		id := scenarios[i].ID
		switch {
		case s.skipped:
			res.Skipped = append(res.Skipped, id)
		case s.err != nil:
			r.logger.Warn("scenario evaluation failed",
				zap.String("run_id", runID),
				zap.String("scenario_id", id),
				zap.Error(s.err),
			)
			res.Failures = append(res.Failures, Failure{ScenarioID: id, Err: s.err})
		default:
			res.Verdicts = append(res.Verdicts, s.verdict)
			if r.writer != nil {
				r.writer.Write(NewVerdictEvent(runID, "cli", s.verdict))
			}
		}
	}

	r.logger.Info("grading run complete",
		zap.String("run_id", runID),
		zap.String("model_name", modelName),
		zap.Int("scored", len(res.Verdicts)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("failed", len(res.Failures)),
	)
	return res, nil
}

func (r *Runner) evaluateOne(ctx context.Context, p *pack.Pack, scenarioID, modelName string) slot {
	text, ok, err := r.transcripts.Transcript(ctx, scenarioID)
	if err != nil {
		return slot{err: fmt.Errorf("read transcript: %w", err)}
	}
	if !ok {
		return slot{skipped: true}
	}
	v, err := r.engine.Evaluate(ctx, p, scenarioID, modelName, text)
	if err != nil {
		return slot{err: err}
	}
	return slot{verdict: v}
}

// NewVerdictEvent converts a verdict into a storage event.
func NewVerdictEvent(runID, source string, v *engine.Verdict) *storage.VerdictEvent {
	return &storage.VerdictEvent{
		RunID:               runID,
		ScenarioID:          v.ScenarioID,
		ModelName:           v.ModelName,
		Timestamp:           v.Timestamp,
		ToolOrderOK:         v.ToolOrder.OK(),
		ConstraintsOK:       v.Constraints.OK(),
		Hallucination:       !v.Hallucination.OK(),
		AskedClarifications: v.Clarification.OK(),
		CommitCalled:        !v.CommitGate.OK(),
		FinalLabel:          string(v.Label),
		Notes:               v.Notes,
		InvocationCount:     int32(len(v.Invocations)),
		ToolNames:           transcript.Names(v.Invocations),
		Source:              source,
	}
}
