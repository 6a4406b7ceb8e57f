package engine

import "github.com/triage-ai/palisade/flight_eval/internal/pack"

// DefaultPolicy applies to scenarios without an explicit eval_policy and
// without an entry in the legacy table.
var DefaultPolicy = pack.EvalPolicy{RequiresSearch: true}

// legacyPolicies reproduces the flight pack's per-id exemptions for records
// that predate the eval_policy field.
var legacyPolicies = map[string]pack.EvalPolicy{
	// Golden answer legitimately names carriers and fares.
	"FLIGHT_001": {RequiresSearch: true, AllowFactualMentions: true, RequiresPassengerDetails: true},
	"FLIGHT_002": {RequiresSearch: true, RequiresPassengerDetails: true},
	// Date confirmation dialogue, no search expected.
	"FLIGHT_003": {RequiresSearch: false},
}

// ResolvePolicy returns the scenario's explicit policy if present, else the
// legacy entry for its id, else DefaultPolicy.
func ResolvePolicy(sc pack.Scenario) pack.EvalPolicy {
	if sc.Policy != nil {
		return *sc.Policy
	}
	if p, ok := legacyPolicies[sc.ID]; ok {
		return p
	}
	return DefaultPolicy
}
