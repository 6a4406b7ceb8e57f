package pack

// Pack is the read-only reference data for one run: tool definitions,
// scenarios and golden trajectories. Build it once and pass it explicitly.
type Pack struct {
	tools     []ToolDefinition
	toolIndex map[string]ToolDefinition
	scenarios []Scenario
	goldens   []GoldenTrajectory
	goldenIdx map[string]GoldenTrajectory
}

// New builds a Pack. Later goldens with a duplicate id replace earlier ones.
func New(tools []ToolDefinition, scenarios []Scenario, goldens []GoldenTrajectory) *Pack {
	p := &Pack{
		tools:     append([]ToolDefinition(nil), tools...),
		toolIndex: make(map[string]ToolDefinition, len(tools)),
		scenarios: append([]Scenario(nil), scenarios...),
		goldens:   append([]GoldenTrajectory(nil), goldens...),
		goldenIdx: make(map[string]GoldenTrajectory, len(goldens)),
	}
	for _, t := range tools {
		p.toolIndex[t.Name] = t
	}
	for _, g := range goldens {
		p.goldenIdx[g.ID] = g
	}
	return p
}

// Tools returns the tool definitions in load order.
func (p *Pack) Tools() []ToolDefinition {
	return append([]ToolDefinition(nil), p.tools...)
}

// Tool looks up a tool definition by name.
func (p *Pack) Tool(name string) (ToolDefinition, bool) {
	t, ok := p.toolIndex[name]
	return t, ok
}

// Scenarios returns the scenarios in load order.
func (p *Pack) Scenarios() []Scenario {
	return append([]Scenario(nil), p.scenarios...)
}

// Scenario looks up the first scenario with the given id.
func (p *Pack) Scenario(id string) (Scenario, bool) {
	for _, s := range p.scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return Scenario{}, false
}

// Goldens returns the golden trajectories in load order.
func (p *Pack) Goldens() []GoldenTrajectory {
	return append([]GoldenTrajectory(nil), p.goldens...)
}

// Golden looks up the golden trajectory for a scenario id.
func (p *Pack) Golden(id string) (GoldenTrajectory, bool) {
	g, ok := p.goldenIdx[id]
	return g, ok
}

// Stats reports record counts (goldens counted by distinct id).
func (p *Pack) Stats() (tools, scenarios, goldens int) {
	return len(p.tools), len(p.scenarios), len(p.goldenIdx)
}
