package pack

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// RequiredConstraintFields must be present in every scenario's constraints.
var RequiredConstraintFields = []string{
	"origin",
	"destination",
	"date",
	"earliest_departure_time",
	"max_layover_minutes",
	"currency",
}

// ErrPackInconsistency is matched by every InconsistencyError.
var ErrPackInconsistency = errors.New("pack inconsistency")

// InconsistencyError carries every problem found in one validation pass.
type InconsistencyError struct {
	MissingGolden []string
	Errors        []string
}

func (e *InconsistencyError) Error() string {
	var parts []string
	if len(e.Errors) > 0 {
		parts = append(parts, fmt.Sprintf("%d validation error(s): %s", len(e.Errors), strings.Join(e.Errors, "; ")))
	}
	if len(e.MissingGolden) > 0 {
		parts = append(parts, "missing golden trajectories for scenarios: "+strings.Join(e.MissingGolden, ", "))
	}
	return "pack inconsistency: " + strings.Join(parts, "; ")
}

func (e *InconsistencyError) Is(target error) bool {
	return target == ErrPackInconsistency
}

// Report is the outcome of Validate. The two lists are independent.
type Report struct {
	MissingGolden []string
	Errors        []string
}

// OK reports whether the pack can be evaluated.
func (r Report) OK() bool {
	return len(r.MissingGolden) == 0 && len(r.Errors) == 0
}

// Err returns an *InconsistencyError if anything was found, nil otherwise.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return &InconsistencyError{MissingGolden: r.MissingGolden, Errors: r.Errors}
}

// Validate cross-checks scenarios, tools and golden trajectories.
// Every problem is collected; nothing is mutated.
func Validate(p *Pack) Report {
	var rep Report

	schemas := make(map[string]*jsonschema.Schema)
	for _, t := range p.tools {
		if len(t.Parameters) == 0 {
			continue
		}
		sch, err := compileSchema(t.Name, t.Parameters)
		if err != nil {
			rep.Errors = append(rep.Errors, fmt.Sprintf("tool '%s': invalid parameters schema: %v", t.Name, err))
			continue
		}
		schemas[t.Name] = sch
	}

	seen := make(map[string]bool, len(p.scenarios))
	for _, sc := range p.scenarios {
		if sc.ID == "" {
			rep.Errors = append(rep.Errors, "Scenario missing 'id'")
			continue
		}
		if seen[sc.ID] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: duplicate scenario id", sc.ID))
		}
		seen[sc.ID] = true

		if _, ok := p.goldenIdx[sc.ID]; !ok {
			rep.MissingGolden = append(rep.MissingGolden, sc.ID)
		}

		for _, tn := range sc.Tools {
			if _, ok := p.toolIndex[tn]; !ok {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s: tool '%s' not defined in tool set", sc.ID, tn))
			}
		}

		for _, req := range RequiredConstraintFields {
			if _, ok := sc.Constraints[req]; !ok {
				rep.Errors = append(rep.Errors, fmt.Sprintf("%s: constraints missing '%s'", sc.ID, req))
			}
		}
	}

	seenGolden := make(map[string]bool, len(p.goldens))
	for _, g := range p.goldens {
		if seenGolden[g.ID] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: duplicate golden id", g.ID))
		}
		seenGolden[g.ID] = true
		if !seen[g.ID] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("%s: golden trajectory has no matching scenario", g.ID))
		}
		rep.Errors = append(rep.Errors, validateGolden(g, p.toolIndex, schemas)...)
	}

	return rep
}

func validateGolden(g GoldenTrajectory, tools map[string]ToolDefinition, schemas map[string]*jsonschema.Schema) []string {
	var errs []string
	for i, step := range g.Steps {
		if step.Type != StepToolCall {
			continue
		}
		if _, ok := tools[step.Name]; !ok {
			errs = append(errs, fmt.Sprintf("%s: golden step %d calls undefined tool '%s'", g.ID, i+1, step.Name))
			continue
		}
		sch, ok := schemas[step.Name]
		if !ok {
			continue
		}
		if err := validateArguments(sch, step.Arguments); err != nil {
			errs = append(errs, fmt.Sprintf("%s: golden step %d arguments for '%s' violate schema: %v", g.ID, i+1, step.Name, err))
		}
	}
	for _, name := range g.MustCallToolsInOrder() {
		if _, ok := tools[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s: %s references undefined tool '%s'", g.ID, RuleMustCallToolsInOrder, name))
		}
	}
	return errs
}

func compileSchema(name string, schema map[string]any) (*jsonschema.Schema, error) {
	doc, err := normalize(schema)
	if err != nil {
		return nil, err
	}
	url := name + ".schema.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

func validateArguments(sch *jsonschema.Schema, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}
	doc, err := normalize(args)
	if err != nil {
		return err
	}
	return sch.Validate(doc)
}

// normalize round-trips v through JSON so nested values have decoder types.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
