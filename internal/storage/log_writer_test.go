package storage

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogWriter_WritesOneEntryPerEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewLogWriter(zap.New(core))
	defer w.Close()

	w.Write(&VerdictEvent{
		RunID:      "run-1",
		ScenarioID: "FLIGHT_001",
		ModelName:  "simulated",
		Timestamp:  time.Now(),
		FinalLabel: "FAIL",
		Notes:      []string{"Possible hallucinated flight details"},
		Source:     "cli",
	})

	entries := logs.FilterMessage("flight_eval_verdict").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["scenario_id"] != "FLIGHT_001" {
		t.Fatalf("unexpected scenario_id %v", fields["scenario_id"])
	}
	if fields["final_label"] != "FAIL" {
		t.Fatalf("unexpected final_label %v", fields["final_label"])
	}
}

func TestBoolToUint8(t *testing.T) {
	if boolToUint8(true) != 1 || boolToUint8(false) != 0 {
		t.Fatal("unexpected encoding")
	}
}
