package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/triage-ai/palisade/flight_eval/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errSilent marks an error whose details were already printed.
var errSilent = errors.New("exit")

// app carries state shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: config.Load()}
	err := newRootCmd(a).ExecuteContext(ctx)
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "flight-eval",
		Short:         "Grade flight-booking agent transcripts against a scenario pack",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `flight-eval validates a scenario pack (tools, scenarios, golden trajectories),
previews it, writes blank result templates, and grades agent transcripts into
scored result rows, either in batch from a directory or over gRPC.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.logger == nil {
				a.logger = mustBuildLogger(a.cfg.LogLevel)
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfg.PackDir, "pack-dir", a.cfg.PackDir, "directory holding tools.json, scenarios.jsonl and golden.jsonl")
	root.PersistentFlags().StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level: debug, info, warn, error")

	root.AddCommand(
		newValidateCmd(a),
		newPreviewCmd(a),
		newTemplateCmd(a),
		newGradeCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}
