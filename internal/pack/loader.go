package pack

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File names inside a pack directory.
const (
	ToolsFile     = "tools.json"
	ScenariosFile = "scenarios.jsonl"
	GoldenFile    = "golden.jsonl"
)

// LoadDir reads tools.json, scenarios.jsonl and golden.jsonl from dir.
func LoadDir(dir string) (*Pack, error) {
	var tools []ToolDefinition
	if err := loadJSON(filepath.Join(dir, ToolsFile), &tools); err != nil {
		return nil, fmt.Errorf("LoadDir: %w", err)
	}

	scenarios, err := loadJSONL[Scenario](filepath.Join(dir, ScenariosFile))
	if err != nil {
		return nil, fmt.Errorf("LoadDir: %w", err)
	}

	goldens, err := loadJSONL[GoldenTrajectory](filepath.Join(dir, GoldenFile))
	if err != nil {
		return nil, fmt.Errorf("LoadDir: %w", err)
	}

	return New(tools, scenarios, goldens), nil
}

func loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("JSON parse error in %s: %w", filepath.Base(path), err)
	}
	return nil
}

// loadJSONL decodes one record per non-blank line.
func loadJSONL[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeJSONL[T](filepath.Base(path), string(data))
}

func decodeJSONL[T any](name, text string) ([]T, error) {
	var rows []T
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row T
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("JSONL parse error in %s line %d: %w", name, i+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
