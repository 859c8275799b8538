package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"mfasrt/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Directories are created so preflight checks pass.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryDB = filepath.Join(base, "logs", "history.db")
	cfgVal.MFA.ModelsDir = filepath.Join(base, "models")
	cfgVal.MFA.LockPath = filepath.Join(base, "run", "mfa.lock")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := os.MkdirAll(builder.cfg.MFA.ModelsDir, 0o755); err != nil {
		t.Fatalf("mkdir models dir: %v", err)
	}
	return builder.cfg
}

// WithoutHistory disables the run history database.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.HistoryDB = ""
	}
}

// WithModels writes placeholder dictionary and acoustic model files for the
// given model names into the models directory.
func WithModels(models ...string) ConfigOption {
	return func(b *configBuilder) {
		dir := b.cfg.MFA.ModelsDir
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.t.Fatalf("mkdir models dir: %v", err)
		}
		for _, model := range models {
			for _, path := range []string{b.cfg.DictionaryPath(model), b.cfg.AcousticModelPath(model)} {
				if err := os.WriteFile(path, []byte(model+"\n"), 0o644); err != nil {
					b.t.Fatalf("write model %s: %v", path, err)
				}
			}
		}
	}
}

// WithStubbedAligner writes a stub aligner executable and points the config
// at it. The stub prints a version string and exits successfully.
func WithStubbedAligner() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "mfa")
		script := []byte("#!/bin/sh\necho 3.1.4\nexit 0\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", target, err)
		}
		b.cfg.MFA.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
