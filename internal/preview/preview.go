// Package preview prints a human-readable summary of a scenario and its
// golden trajectory.
package preview

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/triage-ai/palisade/flight_eval/internal/pack"
)

const maxMessagePreview = 120

// Print writes the preview for one scenario.
func Print(w io.Writer, sc pack.Scenario, g pack.GoldenTrajectory) error {
	var b strings.Builder

	b.WriteString("\n" + strings.Repeat("=", 80) + "\n")
	fmt.Fprintf(&b, "SCENARIO: %s | %s\n", sc.ID, sc.Category)
	b.WriteString("- User prompt:\n")
	b.WriteString(sc.UserPrompt + "\n")

	b.WriteString("- Constraints:\n")
	constraints := sc.Constraints
	if constraints == nil {
		constraints = map[string]any{}
	}
	data, err := json.MarshalIndent(constraints, "", "  ")
	if err != nil {
		return fmt.Errorf("Print %s: constraints: %w", sc.ID, err)
	}
	b.Write(data)
	b.WriteString("\n")

	b.WriteString("- Golden trajectory (expected steps):\n")
	for _, step := range g.Steps {
		if step.Type == pack.StepToolCall {
			args, err := json.Marshal(step.Arguments)
			if err != nil {
				return fmt.Errorf("Print %s: step %s: %w", sc.ID, step.Name, err)
			}
			fmt.Fprintf(&b, "  TOOL_CALL: %s  args=%s\n", step.Name, args)
			continue
		}
		fmt.Fprintf(&b, "  ASSISTANT: %s\n", truncate(step.Content, maxMessagePreview))
	}

	keys := make([]string, 0, len(g.PassFailRules))
	for k := range g.PassFailRules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(&b, "- Pass/fail rules keys: [%s]\n", strings.Join(keys, ", "))

	_, err = io.WriteString(w, b.String())
	return err
}

// truncate cuts s to n runes and appends "..." when it was longer.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
