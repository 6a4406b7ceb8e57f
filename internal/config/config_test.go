package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"FLIGHT_EVAL_PACK_DIR", "FLIGHT_EVAL_TRANSCRIPT_DIR", "FLIGHT_EVAL_OUTPUT",
		"FLIGHT_EVAL_MODEL_NAME", "FLIGHT_EVAL_WORKERS", "FLIGHT_EVAL_SEARCH_TOOL",
		"FLIGHT_EVAL_COMMIT_TOOL", "POSTGRES_DSN", "CLICKHOUSE_DSN", "FLIGHT_EVAL_PORT",
		"FLIGHT_EVAL_API_KEY_HASH", "FLIGHT_EVAL_AUTH_CACHE_TTL_S", "FLIGHT_EVAL_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()
	if cfg.PackDir != "." {
		t.Fatalf("unexpected pack dir %q", cfg.PackDir)
	}
	if cfg.TranscriptDir != "" {
		t.Fatalf("expected unset transcript dir, got %q", cfg.TranscriptDir)
	}
	if cfg.TranscriptPath() != filepath.Join(".", DefaultTranscriptDir) {
		t.Fatalf("unexpected transcript path %q", cfg.TranscriptPath())
	}
	if cfg.ModelName != "simulated" || cfg.Workers != 4 {
		t.Fatalf("unexpected model/workers %q/%d", cfg.ModelName, cfg.Workers)
	}
	if cfg.SearchTool != "search_flights" || cfg.CommitTool != "create_booking" {
		t.Fatalf("unexpected tools %q/%q", cfg.SearchTool, cfg.CommitTool)
	}
	if cfg.Port != "50054" || cfg.AuthCacheTTL != 30*time.Second {
		t.Fatalf("unexpected port/ttl %q/%v", cfg.Port, cfg.AuthCacheTTL)
	}
	if cfg.APIKeyHashes != nil {
		t.Fatalf("expected no key hashes, got %v", cfg.APIKeyHashes)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FLIGHT_EVAL_PACK_DIR", "/data/pack")
	t.Setenv("FLIGHT_EVAL_TRANSCRIPT_DIR", "")
	t.Setenv("FLIGHT_EVAL_WORKERS", "8")
	t.Setenv("FLIGHT_EVAL_API_KEY_HASH", "h1, ,h2")
	t.Setenv("FLIGHT_EVAL_COMMIT_TOOL", "book_flight")

	cfg := Load()
	if cfg.TranscriptPath() != filepath.Join("/data/pack", DefaultTranscriptDir) {
		t.Fatalf("transcript path should follow pack dir, got %q", cfg.TranscriptPath())
	}
	if cfg.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.Workers)
	}
	if len(cfg.APIKeyHashes) != 2 || cfg.APIKeyHashes[1] != "h2" {
		t.Fatalf("unexpected key hashes %v", cfg.APIKeyHashes)
	}
	if cfg.CommitTool != "book_flight" {
		t.Fatalf("unexpected commit tool %q", cfg.CommitTool)
	}
}

func TestEnvOrDefaultInt_Invalid(t *testing.T) {
	t.Setenv("FLIGHT_EVAL_WORKERS", "many")
	if got := envOrDefaultInt("FLIGHT_EVAL_WORKERS", 4); got != 4 {
		t.Fatalf("expected fallback 4, got %d", got)
	}
}

func TestTranscriptPath_FollowsPackDirSetLater(t *testing.T) {
	cfg := Config{PackDir: "."}
	cfg.PackDir = "/srv/pack"
	if got := cfg.TranscriptPath(); got != filepath.Join("/srv/pack", DefaultTranscriptDir) {
		t.Fatalf("unexpected transcript path %q", got)
	}
	cfg.TranscriptDir = "/srv/outputs"
	if got := cfg.TranscriptPath(); got != "/srv/outputs" {
		t.Fatalf("explicit transcript dir should win, got %q", got)
	}
}
