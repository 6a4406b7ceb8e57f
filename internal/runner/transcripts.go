package runner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// TranscriptSource supplies raw transcript text per scenario id.
// ok is false when no transcript exists; that is not an error.
type TranscriptSource interface {
	Transcript(ctx context.Context, scenarioID string) (text string, ok bool, err error)
}

// DirTranscripts reads <Dir>/<scenario_id>.txt.
type DirTranscripts struct {
	Dir string
}

func (d DirTranscripts) Transcript(_ context.Context, scenarioID string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, scenarioID+".txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

// MapTranscripts serves transcripts from memory.
type MapTranscripts map[string]string

func (m MapTranscripts) Transcript(_ context.Context, scenarioID string) (string, bool, error) {
	text, ok := m[scenarioID]
	return text, ok, nil
}
