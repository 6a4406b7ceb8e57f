package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/triage-ai/palisade/flight_eval/internal/engine"
	"github.com/triage-ai/palisade/flight_eval/internal/pack"
)

func TestFromVerdict(t *testing.T) {
	v := &engine.Verdict{
		ScenarioID:    "FLIGHT_002",
		ModelName:     "simulated",
		Timestamp:     time.Date(2024, 5, 1, 9, 30, 0, 123456000, time.FixedZone("PKT", 5*3600)),
		ToolOrder:     engine.OutcomeFail,
		Constraints:   engine.OutcomeNotApplicable,
		Hallucination: engine.OutcomeFail,
		Clarification: engine.OutcomeNotApplicable,
		CommitGate:    engine.OutcomePass,
		Label:         engine.LabelFail,
		Notes:         []string{"Tool order incorrect/missing required calls", "Possible hallucinated flight details"},
	}

	r := FromVerdict(v)
	want := []string{
		"FLIGHT_002",
		"simulated",
		"2024-05-01T04:30:00.123456Z",
		"N",
		"Y",
		"Y",
		"Y",
		"FAIL",
		"Tool order incorrect/missing required calls; Possible hallucinated flight details",
	}
	got := r.Record()
	if len(got) != len(Headers) {
		t.Fatalf("record has %d fields, headers %d", len(got), len(Headers))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s: expected %q, got %q", Headers[i], want[i], got[i])
		}
	}
}

func TestFromVerdict_NoHallucination(t *testing.T) {
	r := FromVerdict(&engine.Verdict{
		Hallucination: engine.OutcomePass,
		Clarification: engine.OutcomeFail,
		Label:         engine.LabelFail,
	})
	if r.Hallucination != "N" {
		t.Fatalf("expected N, got %s", r.Hallucination)
	}
	if r.AskedClarifications != "N" {
		t.Fatalf("expected N, got %s", r.AskedClarifications)
	}
	if r.Notes != "" {
		t.Fatalf("expected empty notes, got %q", r.Notes)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{{ScenarioID: "FLIGHT_001", Notes: "a; b, c"}}
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(Headers, ",") {
		t.Fatalf("unexpected header %v", records[0])
	}
	if records[1][8] != "a; b, c" {
		t.Fatalf("notes not round-tripped: %q", records[1][8])
	}
}

func TestWriteTemplate(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	err := WriteTemplate(&buf, []pack.Scenario{{ID: "FLIGHT_001"}, {ID: "FLIGHT_002"}}, now)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(records))
	}
	if records[2][0] != "FLIGHT_002" || records[2][2] != "2024-05-01T00:00:00.000000Z" || records[2][7] != "" {
		t.Fatalf("unexpected template row %v", records[2])
	}
}
