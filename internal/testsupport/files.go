package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// Entry is one aligner word interval used to build fixture JSON.
type Entry struct {
	Start float64
	End   float64
	Label string
}

// AlignerJSON renders aligner output with one word entry per interval.
func AlignerJSON(t testing.TB, entries ...Entry) string {
	t.Helper()

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []any{e.Start, e.End, e.Label})
	}
	payload := map[string]any{
		"start": 0,
		"end":   0,
		"tiers": map[string]any{
			"words": map[string]any{"type": "interval", "entries": rows},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal aligner json: %v", err)
	}
	return string(data)
}
