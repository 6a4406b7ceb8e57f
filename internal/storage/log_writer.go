package storage

import "go.uber.org/zap"

// LogWriter is a fallback EventWriter for local development.
type LogWriter struct {
	logger *zap.Logger
}

// NewLogWriter creates a LogWriter that outputs events to the given logger.
func NewLogWriter(logger *zap.Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

func (w *LogWriter) Write(event *VerdictEvent) {
	w.logger.Info("flight_eval_verdict",
		zap.String("run_id", event.RunID),
		zap.String("scenario_id", event.ScenarioID),
		zap.String("model_name", event.ModelName),
		zap.String("final_label", event.FinalLabel),
		zap.Strings("notes", event.Notes),
		zap.Strings("tool_names", event.ToolNames),
		zap.String("source", event.Source),
	)
}

func (w *LogWriter) Close() {}
