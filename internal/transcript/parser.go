// Package transcript extracts tool invocations from free-text agent transcripts.
//
// A tool invocation is a line of the form
//
//	TOOL_CALL: search_flights {"origin":"KHI","destination":"DXB"}
//
// Every other line is prose and is ignored.
package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Sentinel marks a tool-call line.
const Sentinel = "TOOL_CALL:"

// ErrMalformedToolCall is matched by every MalformedToolCallError.
var ErrMalformedToolCall = errors.New("malformed tool call")

// MalformedToolCallError reports a sentinel line that could not be parsed.
type MalformedToolCallError struct {
	Line   int // 1-based
	Text   string
	Reason string
	Err    error
}

func (e *MalformedToolCallError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed tool call on line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed tool call on line %d: %s", e.Line, e.Reason)
}

func (e *MalformedToolCallError) Is(target error) bool {
	return target == ErrMalformedToolCall
}

func (e *MalformedToolCallError) Unwrap() error {
	return e.Err
}

// ToolInvocation is one tool call extracted from a transcript.
type ToolInvocation struct {
	Name      string
	Arguments map[string]any
}

// Parse returns the tool invocations in the order they appear in text.
// Duplicates are kept. The first malformed sentinel line aborts the parse.
func Parse(text string) ([]ToolInvocation, error) {
	var calls []ToolInvocation
	for i, raw := range splitLines(text) {
		line := strings.TrimSpace(raw)
		if !strings.HasPrefix(line, Sentinel) {
			continue
		}
		call, err := parseLine(line)
		if err != nil {
			err.Line = i + 1
			err.Text = line
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func parseLine(line string) (ToolInvocation, *MalformedToolCallError) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, Sentinel))
	if rest == "" {
		return ToolInvocation{}, &MalformedToolCallError{Reason: "missing tool name"}
	}

	sep := strings.IndexFunc(rest, unicode.IsSpace)
	if sep < 0 {
		return ToolInvocation{}, &MalformedToolCallError{Reason: fmt.Sprintf("tool %q has no argument object", rest)}
	}
	name := rest[:sep]
	argsJSON := strings.TrimSpace(rest[sep:])

	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return ToolInvocation{}, &MalformedToolCallError{Reason: fmt.Sprintf("tool %q arguments are not a JSON object", name), Err: err}
	}
	if args == nil {
		return ToolInvocation{}, &MalformedToolCallError{Reason: fmt.Sprintf("tool %q arguments are null", name)}
	}

	return ToolInvocation{Name: name, Arguments: args}, nil
}

// Names returns the invocation names in order.
func Names(calls []ToolInvocation) []string {
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

// Prose returns text with every sentinel line removed.
func Prose(text string) string {
	lines := splitLines(text)
	kept := make([]string, 0, len(lines))
	for _, raw := range lines {
		if strings.HasPrefix(strings.TrimSpace(raw), Sentinel) {
			continue
		}
		kept = append(kept, raw)
	}
	return strings.Join(kept, "\n")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
