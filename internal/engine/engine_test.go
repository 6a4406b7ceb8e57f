package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/engine/judges"
	"github.com/triage-ai/palisade/flight_eval/internal/pack"
	"github.com/triage-ai/palisade/flight_eval/internal/transcript"
	"go.uber.org/zap"
)

const searchLine = `TOOL_CALL: search_flights {"origin":"KHI","destination":"DXB","date":"2024-05-01","earliest_departure_time":"09:00","currency":"USD"}`

func constraints() map[string]any {
	return map[string]any{
		"origin":                  "KHI",
		"destination":             "DXB",
		"date":                    "2024-05-01",
		"earliest_departure_time": "09:00",
		"max_layover_minutes":     float64(180),
		"currency":                "USD",
	}
}

func testPack() *pack.Pack {
	order := map[string]any{pack.RuleMustCallToolsInOrder: []any{"search_flights"}}
	return pack.New(
		[]pack.ToolDefinition{{Name: "search_flights"}, {Name: "create_booking"}},
		[]pack.Scenario{
			{ID: "FLIGHT_001", Constraints: constraints()},
			{ID: "FLIGHT_002", Constraints: constraints()},
			{ID: "FLIGHT_003", Constraints: constraints()},
			{ID: "FLIGHT_004", Constraints: constraints()},
			{ID: "ORPHAN", Constraints: constraints()},
		},
		[]pack.GoldenTrajectory{
			{ID: "FLIGHT_001", PassFailRules: order},
			{ID: "FLIGHT_002", PassFailRules: order},
			{ID: "FLIGHT_003"},
			{ID: "FLIGHT_004", PassFailRules: order},
		},
	)
}

func newEngine() *engine.EvalEngine {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return engine.NewEvalEngine(judges.Defaults(), engine.DefaultConfig(), zap.NewNop()).
		WithClock(func() time.Time { return fixed })
}

func TestEvaluate_CleanSearchPasses(t *testing.T) {
	v, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_004", "simulated",
		"Let me search.\n"+searchLine+"\nI found a few options after 09:00.")
	if err != nil {
		t.Fatal(err)
	}
	if v.Constraints != engine.OutcomePass {
		t.Fatalf("expected constraints pass, got %v", v.Constraints)
	}
	if v.Label != engine.LabelPass {
		t.Fatalf("expected PASS, got %s (notes %v)", v.Label, v.Notes)
	}
	if len(v.Notes) != 0 {
		t.Fatalf("expected no notes, got %v", v.Notes)
	}
	if v.ModelName != "simulated" || v.ScenarioID != "FLIGHT_004" {
		t.Fatalf("unexpected identity: %s/%s", v.ScenarioID, v.ModelName)
	}
	if !v.Timestamp.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected timestamp %v", v.Timestamp)
	}
}

func TestEvaluate_CommitGateAlwaysFails(t *testing.T) {
	text := searchLine + "\nTOOL_CALL: create_booking {\"flight_id\":\"X1\"}"
	v, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_004", "simulated", text)
	if err != nil {
		t.Fatal(err)
	}
	if v.ToolOrder != engine.OutcomePass || v.Constraints != engine.OutcomePass {
		t.Fatalf("expected other checks to pass: order=%v constraints=%v", v.ToolOrder, v.Constraints)
	}
	if v.Label != engine.LabelFail {
		t.Fatalf("expected FAIL, got %s", v.Label)
	}
	if len(v.Notes) != 1 || v.Notes[0] != "Called create_booking (should not in this eval)" {
		t.Fatalf("unexpected notes %v", v.Notes)
	}
}

func TestEvaluate_HallucinationAllowList(t *testing.T) {
	text := searchLine + "\nEmirates EK601 departs 10:15. Please share the passenger full name and passport."

	v, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_004", "m", text)
	if err != nil {
		t.Fatal(err)
	}
	if v.Hallucination != engine.OutcomeFail {
		t.Fatalf("expected hallucination detected, got %v", v.Hallucination)
	}

	v, err = newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_001", "m", text)
	if err != nil {
		t.Fatal(err)
	}
	if !v.Hallucination.OK() {
		t.Fatalf("expected allow-listed scenario to be exempt, got %v", v.Hallucination)
	}
	if v.Label != engine.LabelPass {
		t.Fatalf("expected PASS, got %s (%v)", v.Label, v.Notes)
	}
}

func TestEvaluate_ClarificationRequired(t *testing.T) {
	v, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_002", "m", searchLine)
	if err != nil {
		t.Fatal(err)
	}
	if v.Clarification != engine.OutcomeFail {
		t.Fatalf("expected clarification failure, got %v", v.Clarification)
	}
	if v.Label != engine.LabelFail {
		t.Fatalf("expected FAIL, got %s", v.Label)
	}

	v, err = newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_004", "m", searchLine)
	if err != nil {
		t.Fatal(err)
	}
	if v.Clarification != engine.OutcomeNotApplicable {
		t.Fatalf("expected not applicable, got %v", v.Clarification)
	}
}

func TestEvaluate_DateConfirmationExempt(t *testing.T) {
	v, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_003", "m",
		"Just to confirm, did you mean Wednesday 1 May?")
	if err != nil {
		t.Fatal(err)
	}
	if v.ToolOrder != engine.OutcomePass {
		t.Fatalf("expected empty order requirement to pass, got %v", v.ToolOrder)
	}
	if v.Constraints != engine.OutcomeNotApplicable {
		t.Fatalf("expected constraints not applicable, got %v", v.Constraints)
	}
	if v.Label != engine.LabelPass {
		t.Fatalf("expected PASS, got %s (%v)", v.Label, v.Notes)
	}
}

func TestEvaluate_NotesOrder(t *testing.T) {
	text := "Qatar is cheapest.\nTOOL_CALL: create_booking {}"
	v, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_002", "m", text)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		judges.NoteToolOrder,
		"search_flights args do not match constraints",
		judges.NoteHallucination,
		judges.NoteClarification,
		"Called create_booking (should not in this eval)",
	}
	if len(v.Notes) != len(want) {
		t.Fatalf("expected %d notes, got %v", len(want), v.Notes)
	}
	for i := range want {
		if v.Notes[i] != want[i] {
			t.Fatalf("note %d: expected %q, got %q", i, want[i], v.Notes[i])
		}
	}
}

func TestEvaluate_MalformedToolCall(t *testing.T) {
	_, err := newEngine().Evaluate(context.Background(), testPack(), "FLIGHT_004", "m",
		"TOOL_CALL: search_flights {not json}")
	if !errors.Is(err, transcript.ErrMalformedToolCall) {
		t.Fatalf("expected malformed tool call error, got %v", err)
	}
}

func TestEvaluate_UnknownScenarioAndMissingGolden(t *testing.T) {
	eng := newEngine()
	if _, err := eng.Evaluate(context.Background(), testPack(), "NOPE", "m", ""); !errors.Is(err, engine.ErrUnknownScenario) {
		t.Fatalf("expected ErrUnknownScenario, got %v", err)
	}
	if _, err := eng.Evaluate(context.Background(), testPack(), "ORPHAN", "m", ""); !errors.Is(err, engine.ErrMissingGolden) {
		t.Fatalf("expected ErrMissingGolden, got %v", err)
	}
}

func TestEvaluate_ExplicitPolicyOverridesLegacyTable(t *testing.T) {
	p := pack.New(
		[]pack.ToolDefinition{{Name: "search_flights"}},
		[]pack.Scenario{{
			ID:          "FLIGHT_001",
			Constraints: constraints(),
			Policy:      &pack.EvalPolicy{RequiresSearch: true},
		}},
		[]pack.GoldenTrajectory{{ID: "FLIGHT_001"}},
	)
	v, err := newEngine().Evaluate(context.Background(), p, "FLIGHT_001", "m", searchLine+"\nEmirates is available.")
	if err != nil {
		t.Fatal(err)
	}
	if v.Hallucination != engine.OutcomeFail {
		t.Fatalf("expected explicit policy to disable the allow-list, got %v", v.Hallucination)
	}
}

// erroringJudge always fails.
type erroringJudge struct{}

func (erroringJudge) Name() string             { return "broken" }
func (erroringJudge) Category() engine.Category { return engine.CategoryToolOrder }
func (erroringJudge) Evaluate(context.Context, *engine.EvalRequest) (*engine.EvalResult, error) {
	return nil, errors.New("boom")
}

func TestEvaluate_JudgeErrorPropagates(t *testing.T) {
	eng := engine.NewEvalEngine([]engine.Judge{erroringJudge{}}, engine.DefaultConfig(), zap.NewNop())
	if _, err := eng.Evaluate(context.Background(), testPack(), "FLIGHT_004", "m", ""); err == nil {
		t.Fatal("expected judge error to propagate")
	}
}

func TestEvaluate_ConcurrentUse(t *testing.T) {
	eng := newEngine()
	p := testPack()
	done := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func() {
			_, err := eng.Evaluate(context.Background(), p, "FLIGHT_004", "m", searchLine)
			done <- err
		}()
	}
	for i := 0; i < 20; i++ {
		if err := <-done; err != nil {
			t.Fatal(err)
		}
	}
}
