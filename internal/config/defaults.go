package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultConfigPath        = "~/.config/mfasrt/config.toml"
	defaultLogDir            = "~/.local/share/mfasrt/logs"
	defaultHistoryDB         = "~/.local/share/mfasrt/history.db"
	defaultWorkDir           = "~/.local/share/mfasrt/work"
	defaultMFABinary         = "mfa"
	defaultMFANumJobs        = 8
	defaultMFABeam           = 100
	defaultMFARetryBeam      = 400
	defaultHighlightColor    = "2DE471"
	defaultBaseColor         = "000000"
	defaultOutputName        = "animated_subs.srt"
	defaultAlignmentLookhead = 2
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
			WorkDir:   defaultWorkDir,
		},
		MFA: MFA{
			Binary:    defaultMFABinary,
			ModelsDir: defaultModelsDir(),
			NumJobs:   defaultMFANumJobs,
			Beam:      defaultMFABeam,
			RetryBeam: defaultMFARetryBeam,
			UseMP:     true,
			Clean:     true,
			LockPath:  defaultLockPath(),
		},
		Karaoke: Karaoke{
			HighlightColor:    defaultHighlightColor,
			BaseColor:         defaultBaseColor,
			RepairInverted:    true,
			DefaultOutputName: defaultOutputName,
		},
		Alignment: Alignment{
			Lookahead:   defaultAlignmentLookhead,
			DecisionLog: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultModelsDir mirrors the aligner's own layout: pretrained models live
// under $MFA_ROOT_DIR/pretrained_models, falling back to ~/Documents/MFA.
func defaultModelsDir() string {
	if root, ok := os.LookupEnv("MFA_ROOT_DIR"); ok && strings.TrimSpace(root) != "" {
		return filepath.Join(strings.TrimSpace(root), "pretrained_models")
	}
	return "~/Documents/MFA/pretrained_models"
}

func defaultLockPath() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mfasrt", "mfa.lock")
	}
	return "~/.local/share/mfasrt/mfa.lock"
}
