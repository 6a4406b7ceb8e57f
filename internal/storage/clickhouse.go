package storage

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

const (
	defaultQueueSize  = 10_000
	defaultBatchSize  = 500
	defaultFlushEvery = 250 * time.Millisecond
	closeDrainBudget  = 2 * time.Second
	insertTimeout     = 5 * time.Second
)

const insertVerdicts = `
	INSERT INTO flight_eval_results (
		run_id, scenario_id, model_name, timestamp,
		tool_order_ok, constraints_ok, hallucination, asked_clarifications,
		commit_called, final_label, notes,
		invocation_count, tool_names, source
	)
`

// batchConn is the subset of driver.Conn the writer needs.
type batchConn interface {
	PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error)
	Close() error
}

// ClickHouseWriter persists verdicts to flight_eval_results. Verdicts are
// queued by Write and inserted in batches by one background goroutine, either
// when batchSize verdicts are pending or every flushEvery.
type ClickHouseWriter struct {
	conn       batchConn
	queue      chan *VerdictEvent
	batchSize  int
	flushEvery time.Duration
	stop       chan struct{}
	stopped    chan struct{}
	closeOnce  sync.Once
	logger     *zap.Logger
}

// NewClickHouseWriter connects to dsn and starts the insert loop.
func NewClickHouseWriter(dsn string, logger *zap.Logger) (*ClickHouseWriter, error) {
	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if opts.TLS == nil {
		opts.TLS = &tls.Config{}
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return newClickHouseWriter(conn, logger), nil
}

func newClickHouseWriter(conn batchConn, logger *zap.Logger) *ClickHouseWriter {
	return startClickHouseWriter(conn, logger, defaultQueueSize, defaultBatchSize, defaultFlushEvery)
}

func startClickHouseWriter(conn batchConn, logger *zap.Logger, queueSize, batchSize int, flushEvery time.Duration) *ClickHouseWriter {
	w := &ClickHouseWriter{
		conn:       conn,
		queue:      make(chan *VerdictEvent, queueSize),
		batchSize:  batchSize,
		flushEvery: flushEvery,
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
	go w.run()
	return w
}

// Write queues a verdict. When the queue is full the verdict is dropped and
// logged; grading never waits on ClickHouse.
func (w *ClickHouseWriter) Write(event *VerdictEvent) {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("verdict queue full, verdict not persisted",
			zap.String("run_id", event.RunID),
			zap.String("scenario_id", event.ScenarioID),
			zap.String("final_label", event.FinalLabel),
		)
	}
}

// Close inserts every queued verdict, then closes the connection.
func (w *ClickHouseWriter) Close() {
	w.closeOnce.Do(func() {
		close(w.stop)
		<-w.stopped
		if err := w.conn.Close(); err != nil {
			w.logger.Warn("closing clickhouse connection", zap.Error(err))
		}
	})
}

func (w *ClickHouseWriter) run() {
	defer close(w.stopped)

	tick := time.NewTicker(w.flushEvery)
	defer tick.Stop()

	pending := make([]*VerdictEvent, 0, w.batchSize)
	for {
		select {
		case ev := <-w.queue:
			pending = append(pending, ev)
			if len(pending) >= w.batchSize {
				pending = w.insert(pending)
			}
		case <-tick.C:
			pending = w.insert(pending)
		case <-w.stop:
			w.insert(w.collectQueued(pending))
			return
		}
	}
}

// collectQueued moves verdicts still in the queue onto pending. It stops once
// the queue is empty or closeDrainBudget has elapsed.
func (w *ClickHouseWriter) collectQueued(pending []*VerdictEvent) []*VerdictEvent {
	deadline := time.After(closeDrainBudget)
	for {
		select {
		case ev := <-w.queue:
			pending = append(pending, ev)
		case <-deadline:
			return pending
		default:
			return pending
		}
	}
}

// insert sends verdicts as one batch and returns the emptied slice.
func (w *ClickHouseWriter) insert(verdicts []*VerdictEvent) []*VerdictEvent {
	if len(verdicts) == 0 {
		return verdicts
	}

	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	batch, err := w.conn.PrepareBatch(ctx, insertVerdicts)
	if err != nil {
		w.logger.Error("preparing verdict batch", zap.Int("verdicts", len(verdicts)), zap.Error(err))
		return verdicts[:0]
	}

	for _, v := range verdicts {
		if err := batch.Append(
			v.RunID,
			v.ScenarioID,
			v.ModelName,
			v.Timestamp,
			boolToUint8(v.ToolOrderOK),
			boolToUint8(v.ConstraintsOK),
			boolToUint8(v.Hallucination),
			boolToUint8(v.AskedClarifications),
			boolToUint8(v.CommitCalled),
			v.FinalLabel,
			v.Notes,
			v.InvocationCount,
			v.ToolNames,
			v.Source,
		); err != nil {
			w.logger.Error("verdict rejected by batch",
				zap.String("run_id", v.RunID),
				zap.String("scenario_id", v.ScenarioID),
				zap.Error(err),
			)
		}
	}

	if err := batch.Send(); err != nil {
		w.logger.Error("inserting verdict batch",
			zap.Int("verdicts", len(verdicts)),
			zap.Error(err),
		)
	}
	return verdicts[:0]
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
