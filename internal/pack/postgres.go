package pack

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// PackStore abstracts DB queries for testability.
type PackStore interface {
	ListTools(ctx context.Context) ([]toolRow, error)
	ListScenarios(ctx context.Context) ([]scenarioRow, error)
	ListGoldens(ctx context.Context) ([]goldenRow, error)
}

type toolRow struct {
	Name        string
	Description sql.NullString
	Parameters  sql.NullString // JSONB as string
}

type scenarioRow struct {
	ID          string
	Category    string
	UserPrompt  string
	Constraints sql.NullString // JSONB columns are nullable
	Tools       sql.NullString
	EvalPolicy  sql.NullString
}

type goldenRow struct {
	ID            string
	Trajectory    sql.NullString
	PassFailRules sql.NullString
}

// sqlPackStore is the real implementation using *sql.DB.
type sqlPackStore struct {
	db *sql.DB
}

func (s *sqlPackStore) ListTools(ctx context.Context) ([]toolRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, description, parameters
		FROM eval_tools
		ORDER BY position, name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []toolRow
	for rows.Next() {
		var r toolRow
		if err := rows.Scan(&r.Name, &r.Description, &r.Parameters); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlPackStore) ListScenarios(ctx context.Context) ([]scenarioRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, user_prompt, constraints, tools, eval_policy
		FROM eval_scenarios
		ORDER BY position, id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []scenarioRow
	for rows.Next() {
		var r scenarioRow
		if err := rows.Scan(&r.ID, &r.Category, &r.UserPrompt, &r.Constraints, &r.Tools, &r.EvalPolicy); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *sqlPackStore) ListGoldens(ctx context.Context) ([]goldenRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, golden_trajectory, pass_fail_rules
		FROM eval_goldens
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []goldenRow
	for rows.Next() {
		var r goldenRow
		if err := rows.Scan(&r.ID, &r.Trajectory, &r.PassFailRules); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PostgresSource loads a pack from the eval_tools, eval_scenarios and
// eval_goldens tables.
type PostgresSource struct {
	store  PackStore
	logger *zap.Logger
}

// NewPostgresSource creates a PostgresSource backed by db.
func NewPostgresSource(db *sql.DB, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{
		store:  &sqlPackStore{db: db},
		logger: logger,
	}
}

// newPostgresSourceWithStore creates a source with a custom store (for testing).
func newPostgresSourceWithStore(store PackStore, logger *zap.Logger) *PostgresSource {
	return &PostgresSource{store: store, logger: logger}
}

// Load reads every record and builds a Pack.
func (s *PostgresSource) Load(ctx context.Context) (*Pack, error) {
	toolRows, err := s.store.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: tools: %w", err)
	}
	scenarioRows, err := s.store.ListScenarios(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: scenarios: %w", err)
	}
	goldenRows, err := s.store.ListGoldens(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: goldens: %w", err)
	}

	tools := make([]ToolDefinition, 0, len(toolRows))
	for _, r := range toolRows {
		td, err := parseToolRow(r)
		if err != nil {
			return nil, err
		}
		tools = append(tools, td)
	}

	scenarios := make([]Scenario, 0, len(scenarioRows))
	for _, r := range scenarioRows {
		sc, err := parseScenarioRow(r)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}

	goldens := make([]GoldenTrajectory, 0, len(goldenRows))
	for _, r := range goldenRows {
		g, err := parseGoldenRow(r)
		if err != nil {
			return nil, err
		}
		goldens = append(goldens, g)
	}

	s.logger.Info("pack loaded from postgres",
		zap.Int("tools", len(tools)),
		zap.Int("scenarios", len(scenarios)),
		zap.Int("goldens", len(goldens)),
	)
	return New(tools, scenarios, goldens), nil
}

func parseToolRow(row toolRow) (ToolDefinition, error) {
	td := ToolDefinition{Name: row.Name}
	if row.Description.Valid {
		td.Description = row.Description.String
	}
	if row.Parameters.Valid && row.Parameters.String != "" && row.Parameters.String != "{}" {
		if err := json.Unmarshal([]byte(row.Parameters.String), &td.Parameters); err != nil {
			return ToolDefinition{}, fmt.Errorf("parseToolRow %s: parameters: %w", row.Name, err)
		}
	}
	return td, nil
}

func parseScenarioRow(row scenarioRow) (Scenario, error) {
	sc := Scenario{
		ID:         row.ID,
		Category:   row.Category,
		UserPrompt: row.UserPrompt,
	}
	if row.Constraints.Valid && row.Constraints.String != "" {
		if err := json.Unmarshal([]byte(row.Constraints.String), &sc.Constraints); err != nil {
			return Scenario{}, fmt.Errorf("parseScenarioRow %s: constraints: %w", row.ID, err)
		}
	}
	if row.Tools.Valid && row.Tools.String != "" && row.Tools.String != "[]" {
		if err := json.Unmarshal([]byte(row.Tools.String), &sc.Tools); err != nil {
			return Scenario{}, fmt.Errorf("parseScenarioRow %s: tools: %w", row.ID, err)
		}
	}
	if row.EvalPolicy.Valid && row.EvalPolicy.String != "" {
		var policy EvalPolicy
		if err := json.Unmarshal([]byte(row.EvalPolicy.String), &policy); err != nil {
			return Scenario{}, fmt.Errorf("parseScenarioRow %s: eval_policy: %w", row.ID, err)
		}
		sc.Policy = &policy
	}
	return sc, nil
}

func parseGoldenRow(row goldenRow) (GoldenTrajectory, error) {
	g := GoldenTrajectory{ID: row.ID}
	if row.Trajectory.Valid && row.Trajectory.String != "" {
		if err := json.Unmarshal([]byte(row.Trajectory.String), &g.Steps); err != nil {
			return GoldenTrajectory{}, fmt.Errorf("parseGoldenRow %s: golden_trajectory: %w", row.ID, err)
		}
	}
	if row.PassFailRules.Valid && row.PassFailRules.String != "" && row.PassFailRules.String != "{}" {
		if err := json.Unmarshal([]byte(row.PassFailRules.String), &g.PassFailRules); err != nil {
			return GoldenTrajectory{}, fmt.Errorf("parseGoldenRow %s: pass_fail_rules: %w", row.ID, err)
		}
	}
	return g, nil
}
