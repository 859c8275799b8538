package mfa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"mfasrt/internal/logging"
	"mfasrt/internal/services"
)

// Aligner defaults matching the upstream align_one recipe.
const (
	DefaultBinary    = "mfa"
	DefaultNumJobs   = 8
	DefaultBeam      = 100
	DefaultRetryBeam = 400
	OutputFormat     = "json"

	lockRetryDelay = 250 * time.Millisecond
)

// Config captures runtime settings for aligner invocations.
type Config struct {
	// Binary is the aligner executable.
	Binary string
	// NumJobs is passed as --num_jobs.
	NumJobs int
	// Beam and RetryBeam bound the decoder search.
	Beam      int
	RetryBeam int
	// UseMP enables multiprocessing inside the aligner.
	UseMP bool
	// Clean discards the aligner's cached temporary files first.
	Clean bool
	// LockPath serializes concurrent runs. Empty disables locking.
	LockPath string
}

// Request names the inputs and output of one alignment.
type Request struct {
	Audio      string
	Text       string
	Dictionary string
	Model      string
	Output     string
}

// Runner invokes the forced aligner.
type Runner struct {
	cfg           Config
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewRunner creates a Runner, filling unset numeric settings with defaults.
func NewRunner(cfg Config, logger *slog.Logger) *Runner {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.NumJobs <= 0 {
		cfg.NumJobs = DefaultNumJobs
	}
	if cfg.Beam <= 0 {
		cfg.Beam = DefaultBeam
	}
	if cfg.RetryBeam <= 0 {
		cfg.RetryBeam = DefaultRetryBeam
	}
	return &Runner{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "mfa"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (r *Runner) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	r.commandRunner = runner
}

// Align runs `align_one` for the request and verifies that the output file
// was produced.
func (r *Runner) Align(ctx context.Context, req Request) error {
	if err := req.validate(); err != nil {
		return services.Wrap(services.ErrValidation, "mfa", "align", err.Error(), nil)
	}
	for _, input := range []string{req.Audio, req.Text, req.Dictionary, req.Model} {
		if _, err := os.Stat(input); err != nil {
			return services.Wrap(services.ErrNotFound, "mfa", "align", input, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(req.Output), 0o755); err != nil {
		return fmt.Errorf("mfa: ensure output dir: %w", err)
	}

	unlock, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	args := r.buildArgs(req)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("running forced aligner",
		logging.String("binary", r.cfg.Binary),
		logging.String("audio", req.Audio),
		logging.String("text", req.Text),
		logging.String("model", req.Model),
	)
	started := time.Now()
	if err := r.run(ctx, r.cfg.Binary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "mfa", "align_one", "aligner failed", err)
	}
	if _, err := os.Stat(req.Output); err != nil {
		return services.Wrap(services.ErrExternalTool, "mfa", "align_one", "aligner produced no output", err)
	}
	logger.Info("forced aligner finished",
		logging.String("output", req.Output),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (req Request) validate() error {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"audio", req.Audio},
		{"text", req.Text},
		{"dictionary", req.Dictionary},
		{"model", req.Model},
		{"output", req.Output},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// acquire takes the cross-process aligner lock, waiting until ctx is done.
func (r *Runner) acquire(ctx context.Context) (func(), error) {
	if r.cfg.LockPath == "" {
		return func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.cfg.LockPath), 0o755); err != nil {
		return nil, fmt.Errorf("mfa: ensure lock dir: %w", err)
	}
	lock := flock.New(r.cfg.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("mfa: acquire lock: %w", err)
	}
	if !ok {
		r.logger.Info("waiting for another aligner run", logging.String("lock", r.cfg.LockPath))
		ok, err = lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("mfa: waiting for lock %s: %w", r.cfg.LockPath, err)
			}
			return nil, fmt.Errorf("mfa: acquire lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("mfa: lock %s held by another run", r.cfg.LockPath)
		}
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release aligner lock", logging.Error(err))
		}
	}, nil
}

// buildArgs constructs the align_one command line.
func (r *Runner) buildArgs(req Request) []string {
	args := make([]string, 0, 18)
	args = append(args, "align_one")
	if r.cfg.Clean {
		args = append(args, "--clean")
	}
	args = append(args, "--overwrite")
	if r.cfg.UseMP {
		args = append(args, "--use_mp")
	}
	args = append(args,
		"--num_jobs", strconv.Itoa(r.cfg.NumJobs),
		"--output_format", OutputFormat,
		req.Audio,
		req.Text,
		req.Dictionary,
		req.Model,
		req.Output,
		"--beam", strconv.Itoa(r.cfg.Beam),
		"--retry_beam", strconv.Itoa(r.cfg.RetryBeam),
	)
	return args
}

// run executes a command, using the custom runner if set.
func (r *Runner) run(ctx context.Context, name string, args ...string) error {
	if r.commandRunner != nil {
		return r.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
