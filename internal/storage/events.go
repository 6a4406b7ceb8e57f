package storage

import "time"

// EventWriter is the interface for persisting graded verdicts.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *VerdictEvent)
	Close()
}

// VerdictEvent is one graded scenario to be persisted.
type VerdictEvent struct {
	RunID               string
	ScenarioID          string
	ModelName           string
	Timestamp           time.Time
	ToolOrderOK         bool
	ConstraintsOK       bool
	Hallucination       bool
	AskedClarifications bool
	CommitCalled        bool
	FinalLabel          string // "PASS" or "FAIL"
	Notes               []string
	InvocationCount     int32
	ToolNames           []string
	Source              string // "cli" or "grpc"
}
