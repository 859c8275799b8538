package preflight

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mfasrt/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "missing"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", file)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if !strings.Contains(result.Detail, "is not a directory") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckParentAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckParentAccess("db", filepath.Join(dir, "history.db"))
	if !result.Passed || !strings.Contains(result.Detail, "will be created") {
		t.Fatalf("unexpected result %#v", result)
	}
	missing := CheckParentAccess("db", filepath.Join(dir, "nope", "history.db"))
	if missing.Passed {
		t.Fatal("expected failure when parent is missing")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, "fr"); results != nil {
		t.Fatalf("expected nil results, got %v", results)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.HistoryDB = filepath.Join(base, "logs", "history.db")
	cfg.MFA.ModelsDir = filepath.Join(base, "models")
	cfg.MFA.Binary = filepath.Join(base, "bin", "mfa")
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.LogDir, cfg.MFA.ModelsDir, filepath.Dir(cfg.MFA.Binary)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return &cfg
}

func TestRunAll_AllPassing(t *testing.T) {
	cfg := testConfig(t)
	script := []byte("#!/bin/sh\necho 3.1.4\n")
	if err := os.WriteFile(cfg.MFA.Binary, script, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{cfg.DictionaryPath("french_mfa"), cfg.AcousticModelPath("french_mfa")} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	results := RunAll(context.Background(), cfg, "fr")
	if failed := Failed(results); len(failed) > 0 {
		t.Fatalf("unexpected failures: %s", Summary(results))
	}
	last := results[len(results)-1]
	if last.Name != "MFA version" || last.Detail != "3.1.4" {
		t.Fatalf("unexpected version result %#v", last)
	}
}

func TestRunAll_ReportsMissingModel(t *testing.T) {
	cfg := testConfig(t)
	cfg.MFA.Binary = "clearly-not-present-mfa"

	results := RunAll(context.Background(), cfg, "ru")
	failed := Failed(results)
	names := make([]string, 0, len(failed))
	for _, r := range failed {
		names = append(names, r.Name)
	}
	want := "MFA,Pronunciation dictionary,Acoustic model"
	if strings.Join(names, ",") != want {
		t.Fatalf("failed checks = %v, want %s", names, want)
	}
	for _, r := range results {
		if r.Name == "MFA version" {
			t.Fatal("version probe should be skipped when the binary is missing")
		}
	}
}

func TestRunAll_UnsupportedLanguage(t *testing.T) {
	cfg := testConfig(t)
	results := RunAll(context.Background(), cfg, "xx")
	summary := Summary(results)
	if !strings.Contains(summary, `unsupported language "xx"`) {
		t.Fatalf("summary missing language failure: %s", summary)
	}
}
