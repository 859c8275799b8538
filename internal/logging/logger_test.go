package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mfasrt/internal/config"
	"mfasrt/internal/logging"
	"mfasrt/internal/services"
)

func readLog(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestConsoleLoggerWritesComponentAndFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.With(logging.String(logging.FieldComponent, "aligner")).Info("resolved words", logging.Int("words", 12))
	logger.Debug("hidden detail")

	out := readLog(t, path)
	if !strings.Contains(out, "INFO aligner: resolved words") {
		t.Fatalf("expected component prefix, got %q", out)
	}
	if !strings.Contains(out, "words=12") {
		t.Fatalf("expected words field, got %q", out)
	}
	if strings.Contains(out, "hidden detail") {
		t.Fatalf("debug record should be filtered at info level: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("file output must not contain color codes: %q", out)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("segmented", logging.Int("blocks", 3))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg"} {
		if _, ok := record[key]; !ok {
			t.Fatalf("expected key %q in %v", key, record)
		}
	}
	if record["level"] != "info" {
		t.Fatalf("expected lower-case level, got %v", record["level"])
	}
	if record["blocks"] != float64(3) {
		t.Fatalf("expected blocks=3, got %v", record["blocks"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml", OutputPaths: []string{filepath.Join(t.TempDir(), "x.log")}}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextAddsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logging.WarnWithContext(logger, "low vocabulary overlap", "vocabulary_overlap",
		logging.String(logging.FieldErrorHint, "check that the transcript matches the audio"),
	)

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if record[logging.FieldEventType] != "vocabulary_overlap" {
		t.Fatalf("unexpected event_type: %v", record[logging.FieldEventType])
	}
	if record[logging.FieldImpact] == nil || record[logging.FieldImpact] == "" {
		t.Fatalf("expected default impact, got %v", record)
	}
	if record[logging.FieldErrorHint] != "check that the transcript matches the audio" {
		t.Fatalf("caller-supplied hint should be kept, got %v", record[logging.FieldErrorHint])
	}
}

func TestWithContextAddsRunFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctx.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := services.WithStage(services.WithRunID(context.Background(), "run-42"), "align")
	logging.WithContext(ctx, logger).Info("started")

	out := readLog(t, path)
	if !strings.Contains(out, "run_id=run-42") || !strings.Contains(out, "stage=align") {
		t.Fatalf("expected run fields, got %q", out)
	}
}

func TestErrorAttrFormatsMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "err.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Error("alignment failed", logging.Error(errors.New("structural mismatch")))

	if out := readLog(t, path); !strings.Contains(out, `error="structural mismatch"`) {
		t.Fatalf("expected quoted error, got %q", out)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	logger.Info("written")

	if out := readLog(t, filepath.Join(cfg.Paths.LogDir, "mfasrt.log")); !strings.Contains(out, "written") {
		t.Fatalf("expected record in mfasrt.log, got %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 12) {
		t.Fatal("nop logger should not be enabled")
	}
}

func TestConsoleLoggerPrefixesGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.log")
	logger, err := logging.New(logging.Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.WithGroup("mfa").Debug("invoking", logging.Int("beam", 100), logging.String("model", "french mfa"))

	out := readLog(t, path)
	if !strings.Contains(out, "mfa.beam=100") || !strings.Contains(out, `mfa.model="french mfa"`) {
		t.Fatalf("expected grouped keys, got %q", out)
	}
	if !strings.Contains(out, "DEBUG invoking [") {
		t.Fatalf("debug level should include the source location, got %q", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := logging.New(logging.Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unsupported level")
	}
}

func TestDecisionAttrs(t *testing.T) {
	attrs := logging.DecisionAttrs("exact", "accepted", "labels equal")
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	if strings.Join(keys, ",") != "decision_type,decision_result,decision_reason" {
		t.Fatalf("unexpected keys %v", keys)
	}
}
