package pack

// ToolDefinition is a capability the agent may invoke.
// Loaded from tools.json (or the eval_tools table).
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"` // JSON Schema, nil if not set
}

// Scenario is one evaluation task.
type Scenario struct {
	ID          string         `json:"id"`
	Category    string         `json:"category"`
	UserPrompt  string         `json:"user_prompt"`
	Constraints map[string]any `json:"constraints"`
	Tools       []string       `json:"tools,omitempty"`
	Policy      *EvalPolicy    `json:"eval_policy,omitempty"` // nil = use the default policy table
}

// EvalPolicy carries the per-scenario exemptions used by the judges.
type EvalPolicy struct {
	RequiresSearch           bool `json:"requires_search"`
	AllowFactualMentions     bool `json:"allow_factual_mentions"`
	RequiresPassengerDetails bool `json:"requires_passenger_details"`
}

// Step types in a golden trajectory.
const (
	StepToolCall = "tool_call"
	StepMessage  = "message"
)

// Step is one expected action in a golden trajectory.
type Step struct {
	Type      string         `json:"type"`
	Name      string         `json:"name,omitempty"`
	Arguments map[string]any `json:"arguments,omitempty"`
	Content   string         `json:"content,omitempty"`
}

// GoldenTrajectory is the reference answer for a scenario.
type GoldenTrajectory struct {
	ID            string         `json:"id"`
	Steps         []Step         `json:"golden_trajectory"`
	PassFailRules map[string]any `json:"pass_fail_rules"`
}

// RuleMustCallToolsInOrder is the pass_fail_rules key holding the required call order.
const RuleMustCallToolsInOrder = "must_call_tools_in_order"

// MustCallToolsInOrder returns the ordered tool names the transcript must contain.
// Non-string entries are ignored.
func (g GoldenTrajectory) MustCallToolsInOrder() []string {
	raw, ok := g.PassFailRules[RuleMustCallToolsInOrder]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	return nil
}
