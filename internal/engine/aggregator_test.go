package engine

import "testing"

func TestAggregate_AllPass(t *testing.T) {
	results := []JudgeResult{
		{Category: CategoryToolOrder, Outcome: OutcomePass},
		{Category: CategoryConstraints, Outcome: OutcomeNotApplicable},
	}
	agg := Aggregate(results)
	if agg.Label != LabelPass {
		t.Fatalf("expected PASS, got %s", agg.Label)
	}
	if len(agg.Notes) != 0 {
		t.Fatalf("expected no notes, got %v", agg.Notes)
	}
}

func TestAggregate_AnyFailFails(t *testing.T) {
	results := []JudgeResult{
		{Category: CategoryToolOrder, Outcome: OutcomePass},
		{Category: CategoryCommitGate, Outcome: OutcomeFail, Details: "Called create_booking (should not in this eval)"},
	}
	agg := Aggregate(results)
	if agg.Label != LabelFail {
		t.Fatalf("expected FAIL, got %s", agg.Label)
	}
	if len(agg.Notes) != 1 {
		t.Fatalf("expected 1 note, got %v", agg.Notes)
	}
}

func TestAggregate_NotesKeepJudgeOrder(t *testing.T) {
	results := []JudgeResult{
		{Outcome: OutcomeFail, Details: "first"},
		{Outcome: OutcomePass, Details: "ignored"},
		{Outcome: OutcomeFail, Details: "second"},
	}
	agg := Aggregate(results)
	if len(agg.Notes) != 2 || agg.Notes[0] != "first" || agg.Notes[1] != "second" {
		t.Fatalf("unexpected notes %v", agg.Notes)
	}
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)
	if agg.Label != LabelPass {
		t.Fatalf("expected PASS for no results, got %s", agg.Label)
	}
}

func TestOutcome_OK(t *testing.T) {
	if !OutcomePass.OK() || !OutcomeNotApplicable.OK() || OutcomeFail.OK() {
		t.Fatal("unexpected OK() mapping")
	}
}
