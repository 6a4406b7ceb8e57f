package chread

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

// Reader provides read access to the ClickHouse flight_eval_results table.
type Reader struct {
	conn   driver.Conn
	logger *zap.Logger
}

// NewReader opens a ClickHouse connection for read queries.
func NewReader(dsn string, logger *zap.Logger) (*Reader, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("NewReader: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("NewReader: %w", err)
	}

	return &Reader{conn: conn, logger: logger}, nil
}

// Close closes the ClickHouse connection.
func (r *Reader) Close() error {
	return r.conn.Close()
}

// VerdictRow is a single stored verdict.
type VerdictRow struct {
	RunID               string
	ScenarioID          string
	ModelName           string
	Timestamp           time.Time
	ToolOrderOK         uint8
	ConstraintsOK       uint8
	Hallucination       uint8
	AskedClarifications uint8
	CommitCalled        uint8
	FinalLabel          string
	Notes               []string
	Source              string
}

// ListParams holds filters and pagination for verdict listing.
type ListParams struct {
	ModelName  *string
	ScenarioID *string
	FinalLabel *string
	RunID      *string
	StartTime  *time.Time
	Page       int
	PageSize   int
}

// whereClause builds the filter for p. An empty filter matches every row.
func (p ListParams) whereClause() (string, []any) {
	conditions := []string{"1 = 1"}
	var args []any

	if p.ModelName != nil {
		conditions = append(conditions, "model_name = @model_name")
		args = append(args, clickhouse.Named("model_name", *p.ModelName))
	}
	if p.ScenarioID != nil {
		conditions = append(conditions, "scenario_id = @scenario_id")
		args = append(args, clickhouse.Named("scenario_id", *p.ScenarioID))
	}
	if p.FinalLabel != nil {
		conditions = append(conditions, "final_label = @final_label")
		args = append(args, clickhouse.Named("final_label", *p.FinalLabel))
	}
	if p.RunID != nil {
		conditions = append(conditions, "run_id = @run_id")
		args = append(args, clickhouse.Named("run_id", *p.RunID))
	}
	if p.StartTime != nil {
		conditions = append(conditions, "timestamp >= @start_time")
		args = append(args, clickhouse.Named("start_time", *p.StartTime))
	}
	return strings.Join(conditions, " AND "), args
}

func (p ListParams) page() (limit, offset uint32) {
	size := p.PageSize
	if size <= 0 {
		size = 50
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return uint32(size), uint32((page - 1) * size)
}

// ListVerdicts returns paginated, filtered verdicts (newest first) and the total count.
func (r *Reader) ListVerdicts(ctx context.Context, params ListParams) ([]VerdictRow, int, error) {
	where, args := params.whereClause()

	var total uint64
	countQuery := fmt.Sprintf("SELECT count() FROM flight_eval_results WHERE %s", where)
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListVerdicts count: %w", err)
	}

	limit, offset := params.page()
	dataQuery := fmt.Sprintf(
		"SELECT run_id, scenario_id, model_name, timestamp, "+
			"tool_order_ok, constraints_ok, hallucination, asked_clarifications, commit_called, "+
			"final_label, notes, source "+
			"FROM flight_eval_results WHERE %s "+
			"ORDER BY timestamp DESC "+
			"LIMIT @limit OFFSET @offset",
		where,
	)
	args = append(args,
		clickhouse.Named("limit", limit),
		clickhouse.Named("offset", offset),
	)

	rows, err := r.conn.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListVerdicts query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var verdicts []VerdictRow
	for rows.Next() {
		var v VerdictRow
		if err := rows.Scan(
			&v.RunID, &v.ScenarioID, &v.ModelName, &v.Timestamp,
			&v.ToolOrderOK, &v.ConstraintsOK, &v.Hallucination, &v.AskedClarifications, &v.CommitCalled,
			&v.FinalLabel, &v.Notes, &v.Source,
		); err != nil {
			return nil, 0, fmt.Errorf("ListVerdicts scan: %w", err)
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, int(total), rows.Err()
}

// ScenarioStats is the pass count of one scenario.
type ScenarioStats struct {
	ScenarioID string
	Total      int
	Passes     int
}

// PassRate returns passes/total, or 0 when nothing was graded.
func (s ScenarioStats) PassRate() float64 {
	return passRate(s.Passes, s.Total)
}

// NoteCount is how often a failure note was recorded.
type NoteCount struct {
	Note  string
	Count int
}

// Summary aggregates stored verdicts for one model.
type Summary struct {
	ModelName  string
	Total      int
	Passes     int
	Fails      int
	ByScenario []ScenarioStats
	TopNotes   []NoteCount
}

// PassRate returns passes/total, or 0 when nothing was graded.
func (s *Summary) PassRate() float64 {
	return passRate(s.Passes, s.Total)
}

func passRate(passes, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(passes) / float64(total)
}

// GetSummary aggregates verdicts for modelName over the last days.
func (r *Reader) GetSummary(ctx context.Context, modelName string, days int) (*Summary, error) {
	rangeStart := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	baseArgs := []any{
		clickhouse.Named("model_name", modelName),
		clickhouse.Named("range_start", rangeStart),
	}

	result := &Summary{ModelName: modelName}

	var total, passes, fails uint64
	err := r.conn.QueryRow(ctx,
		"SELECT count() as total, "+
			"countIf(final_label = 'PASS') as passes, "+
			"countIf(final_label = 'FAIL') as fails "+
			"FROM flight_eval_results "+
			"WHERE model_name = @model_name AND timestamp >= @range_start",
		baseArgs...,
	).Scan(&total, &passes, &fails)
	if err != nil {
		return nil, fmt.Errorf("GetSummary totals: %w", err)
	}
	result.Total = int(total)
	result.Passes = int(passes)
	result.Fails = int(fails)

	scRows, err := r.conn.Query(ctx,
		"SELECT scenario_id, count() as total, countIf(final_label = 'PASS') as passes "+
			"FROM flight_eval_results "+
			"WHERE model_name = @model_name AND timestamp >= @range_start "+
			"GROUP BY scenario_id ORDER BY scenario_id",
		baseArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("GetSummary by_scenario: %w", err)
	}
	defer func() { _ = scRows.Close() }()
	for scRows.Next() {
		var id string
		var t, p uint64
		if err := scRows.Scan(&id, &t, &p); err != nil {
			return nil, fmt.Errorf("GetSummary by_scenario scan: %w", err)
		}
		result.ByScenario = append(result.ByScenario, ScenarioStats{
			ScenarioID: id, Total: int(t), Passes: int(p),
		})
	}

	noteRows, err := r.conn.Query(ctx,
		"SELECT arrayJoin(notes) as note, count() as count "+
			"FROM flight_eval_results "+
			"WHERE model_name = @model_name AND final_label = 'FAIL' "+
			"AND timestamp >= @range_start "+
			"GROUP BY note ORDER BY count DESC LIMIT 10",
		baseArgs...,
	)
	if err != nil {
		return nil, fmt.Errorf("GetSummary top_notes: %w", err)
	}
	defer func() { _ = noteRows.Close() }()
	for noteRows.Next() {
		var note string
		var count uint64
		if err := noteRows.Scan(&note, &count); err != nil {
			return nil, fmt.Errorf("GetSummary top_notes scan: %w", err)
		}
		result.TopNotes = append(result.TopNotes, NoteCount{Note: note, Count: int(count)})
	}

	return result, nil
}
