package main

import (
	"github.com/triage-ai/palisade/flight_eval/internal/storage"
	"go.uber.org/zap"
)

// newEventWriter returns a ClickHouse writer, or a LogWriter when no DSN is
// set or the connection fails.
func newEventWriter(dsn string, logger *zap.Logger) storage.EventWriter {
	if dsn == "" {
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
		return storage.NewLogWriter(logger)
	}
	chWriter, err := storage.NewClickHouseWriter(dsn, logger)
	if err != nil {
		logger.Warn("clickhouse connection failed, falling back to log writer",
			zap.Error(err),
		)
		return storage.NewLogWriter(logger)
	}
	logger.Info("clickhouse writer connected")
	return chWriter
}
