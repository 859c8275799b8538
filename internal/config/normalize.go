package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMFA(); err != nil {
		return err
	}
	c.normalizeKaraoke()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeMFA() error {
	c.MFA.Binary = strings.TrimSpace(c.MFA.Binary)
	if c.MFA.Binary == "" {
		c.MFA.Binary = defaultMFABinary
	}
	if strings.TrimSpace(c.MFA.ModelsDir) == "" {
		c.MFA.ModelsDir = defaultModelsDir()
	}
	var err error
	if c.MFA.ModelsDir, err = expandPath(strings.TrimSpace(c.MFA.ModelsDir)); err != nil {
		return fmt.Errorf("mfa.models_dir: %w", err)
	}
	if strings.TrimSpace(c.MFA.LockPath) == "" {
		c.MFA.LockPath = defaultLockPath()
	}
	if c.MFA.LockPath, err = expandPath(strings.TrimSpace(c.MFA.LockPath)); err != nil {
		return fmt.Errorf("mfa.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeKaraoke() {
	c.Karaoke.HighlightColor = normalizeColor(c.Karaoke.HighlightColor, defaultHighlightColor)
	c.Karaoke.BaseColor = normalizeColor(c.Karaoke.BaseColor, defaultBaseColor)
	c.Karaoke.DefaultOutputName = strings.TrimSpace(c.Karaoke.DefaultOutputName)
	if c.Karaoke.DefaultOutputName == "" {
		c.Karaoke.DefaultOutputName = defaultOutputName
	}
}

// normalizeColor accepts "#2de471" or "2DE471FF" style values and returns the
// upper-case digits without the leading '#'.
func normalizeColor(value, fallback string) string {
	value = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if value == "" {
		value = fallback
	}
	return value
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if value, ok := os.LookupEnv("MFASRT_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}
