package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and state file locations.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	HistoryDB string `toml:"history_db"`
	WorkDir   string `toml:"work_dir" validate:"required"`
}

// MFA contains configuration for the external forced aligner.
type MFA struct {
	Binary    string `toml:"binary" validate:"required"`
	ModelsDir string `toml:"models_dir" validate:"required"`
	NumJobs   int    `toml:"num_jobs" validate:"min=1,max=256"`
	Beam      int    `toml:"beam" validate:"min=1"`
	RetryBeam int    `toml:"retry_beam" validate:"gtefield=Beam"`
	UseMP     bool   `toml:"use_mp"`
	Clean     bool   `toml:"clean"`
	LockPath  string `toml:"lock_path" validate:"required"`
}

// Karaoke contains subtitle styling and output settings.
type Karaoke struct {
	HighlightColor    string `toml:"highlight_color" validate:"required,karaokecolor"`
	BaseColor         string `toml:"base_color" validate:"required,karaokecolor"`
	RepairInverted    bool   `toml:"repair_inverted"`
	DefaultOutputName string `toml:"default_output_name" validate:"required,endswith=.srt"`
}

// Alignment contains matcher settings.
type Alignment struct {
	Lookahead   int  `toml:"lookahead" validate:"min=1,max=2"`
	DecisionLog bool `toml:"decision_log"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" validate:"oneof=console json"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
}

// Config encapsulates all configuration values for mfasrt.
//
// Configuration sections by subsystem:
//   - Paths: log directory, run history database, aligner scratch space
//   - MFA: aligner binary, pretrained models and search beams
//   - Karaoke: highlight colors, inversion repair, default output name
//   - Alignment: matcher lookahead and the diagnostic decision table
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	MFA       MFA       `toml:"mfa"`
	Karaoke   Karaoke   `toml:"karaoke"`
	Alignment Alignment `toml:"alignment"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mfasrt.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if c.Paths.HistoryDB != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.HistoryDB))
	}
	if c.MFA.LockPath != "" {
		dirs = append(dirs, filepath.Dir(c.MFA.LockPath))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DictionaryPath returns the pronunciation dictionary for an aligner model name.
func (c *Config) DictionaryPath(model string) string {
	return filepath.Join(c.MFA.ModelsDir, model+".dict")
}

// AcousticModelPath returns the acoustic model archive for an aligner model name.
func (c *Config) AcousticModelPath(model string) string {
	return filepath.Join(c.MFA.ModelsDir, model+".zip")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
