// Package config reads flight-eval settings from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultModelName      = "simulated"
	DefaultPort           = "50054"
	DefaultScoredOutput   = "results_scored.csv"
	DefaultTemplateOutput = "results_out.csv"
	DefaultTranscriptDir  = "model_outputs"
)

// Config holds every environment-driven setting. Zero-value DSNs disable
// the corresponding backend.
type Config struct {
	PackDir       string
	TranscriptDir string // empty = <PackDir>/model_outputs
	Output        string
	ModelName     string
	Workers       int
	SearchTool    string
	CommitTool    string
	PostgresDSN   string
	ClickHouseDSN string
	Port          string
	APIKeyHashes  []string
	AuthCacheTTL  time.Duration
	LogLevel      string
}

// Load reads Config from the process environment.
func Load() Config {
	return Config{
		PackDir:       envOrDefault("FLIGHT_EVAL_PACK_DIR", "."),
		TranscriptDir: os.Getenv("FLIGHT_EVAL_TRANSCRIPT_DIR"),
		Output:        envOrDefault("FLIGHT_EVAL_OUTPUT", DefaultScoredOutput),
		ModelName:     envOrDefault("FLIGHT_EVAL_MODEL_NAME", DefaultModelName),
		Workers:       envOrDefaultInt("FLIGHT_EVAL_WORKERS", 4),
		SearchTool:    envOrDefault("FLIGHT_EVAL_SEARCH_TOOL", "search_flights"),
		CommitTool:    envOrDefault("FLIGHT_EVAL_COMMIT_TOOL", "create_booking"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		Port:          envOrDefault("FLIGHT_EVAL_PORT", DefaultPort),
		APIKeyHashes:  splitList(os.Getenv("FLIGHT_EVAL_API_KEY_HASH")),
		AuthCacheTTL:  time.Duration(envOrDefaultInt("FLIGHT_EVAL_AUTH_CACHE_TTL_S", 30)) * time.Second,
		LogLevel:      envOrDefault("FLIGHT_EVAL_LOG_LEVEL", "info"),
	}
}

// TranscriptPath returns TranscriptDir, or <PackDir>/model_outputs when it
// is unset. Resolve it after flags are parsed.
func (c Config) TranscriptPath() string {
	if c.TranscriptDir != "" {
		return c.TranscriptDir
	}
	return filepath.Join(c.PackDir, DefaultTranscriptDir)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

// splitList splits a comma-separated value, dropping empty entries.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
