package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mfasrt/internal/alignment"
	"mfasrt/internal/config"
	"mfasrt/internal/decisionlog"
	"mfasrt/internal/fileutil"
	"mfasrt/internal/history"
	"mfasrt/internal/karaoke"
	"mfasrt/internal/language"
	"mfasrt/internal/logging"
	"mfasrt/internal/mfa"
	"mfasrt/internal/preflight"
	"mfasrt/internal/services"
	"mfasrt/internal/subtitles"
	"mfasrt/internal/textutil"
)

// MinVocabularyOverlap is the similarity below which the transcript and the
// aligner output probably describe different audio.
const MinVocabularyOverlap = 0.3

// Pipeline runs karaoke subtitle generation against a configuration.
type Pipeline struct {
	cfg           *config.Config
	logger        *slog.Logger
	runner        *mfa.Runner
	history       *history.Store
	skipPreflight bool
	now           func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithHistory persists every run to store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.history = store }
}

// WithRunner replaces the aligner runner built from the configuration.
func WithRunner(runner *mfa.Runner) Option {
	return func(p *Pipeline) { p.runner = runner }
}

// WithoutPreflight skips environment checks before invoking the aligner.
func WithoutPreflight() Option {
	return func(p *Pipeline) { p.skipPreflight = true }
}

// New constructs a Pipeline.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = mfa.NewRunner(RunnerConfig(cfg), logger)
	}
	return p
}

// RunnerConfig maps the [mfa] configuration section onto runner settings.
func RunnerConfig(cfg *config.Config) mfa.Config {
	return mfa.Config{
		Binary:    cfg.MFA.Binary,
		NumJobs:   cfg.MFA.NumJobs,
		Beam:      cfg.MFA.Beam,
		RetryBeam: cfg.MFA.RetryBeam,
		UseMP:     cfg.MFA.UseMP,
		Clean:     cfg.MFA.Clean,
		LockPath:  cfg.MFA.LockPath,
	}
}

// Run executes the pipeline and records the outcome in the run history.
func (p *Pipeline) Run(ctx context.Context, req Request) (result Result, err error) {
	started := p.now()
	result.RunID = uuid.NewString()
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, p.logger)

	defer func() {
		result.Duration = p.now().Sub(started)
		p.record(ctx, req, result, started, err)
	}()

	if strings.TrimSpace(req.TextPath) == "" {
		return result, services.Wrap(services.ErrValidation, "pipeline", "request", "transcript path required", nil)
	}
	if !req.aligns() && strings.TrimSpace(req.TokensPath) == "" {
		return result, services.Wrap(services.ErrValidation, "pipeline", "request", "aligner JSON or audio path required", nil)
	}

	style, err := karaoke.NewStyle(p.cfg.Karaoke.HighlightColor, p.cfg.Karaoke.BaseColor)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "pipeline", "style", "invalid karaoke colors", err)
	}
	result.OutputPath = p.outputPath(req)

	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "pipeline_start"),
		logging.String("text", req.TextPath),
		logging.String("output", result.OutputPath),
		logging.Bool("run_aligner", req.aligns()),
	)

	var transcript subtitles.Transcript
	err = p.stage(ctx, "transcript", func(context.Context) error {
		var loadErr error
		transcript, loadErr = subtitles.LoadTranscript(req.TextPath)
		return loadErr
	})
	if err != nil {
		return result, err
	}
	words, spans := textutil.TokenizeLines(transcript.Lines)
	result.Words = len(words)
	logger.Debug("transcript loaded",
		logging.Int("lines", len(transcript.Lines)),
		logging.Int("words", len(words)),
		logging.Bool("timed", transcript.Timed()),
	)
	if len(words) == 0 {
		return result, services.Wrap(services.ErrValidation, "transcript", "tokenize", "transcript contains no words", nil)
	}

	result.TokensPath = req.TokensPath
	if req.aligns() {
		err = p.stage(ctx, "mfa", func(stageCtx context.Context) error {
			path, alignErr := p.align(stageCtx, req, transcript, result.RunID)
			result.TokensPath = path
			return alignErr
		})
		if err != nil {
			return result, err
		}
	}

	var tokens []alignment.Token
	err = p.stage(ctx, "tokens", func(context.Context) error {
		var loadErr error
		tokens, loadErr = mfa.LoadTokens(result.TokensPath)
		return loadErr
	})
	if err != nil {
		return result, err
	}
	result.Tokens = len(alignment.DropSkips(tokens))
	result.Unknown = alignment.CountUnknown(tokens)
	result.Overlap = p.checkOverlap(logger, words, tokens)

	var timings []alignment.TimedWord
	err = p.stage(ctx, "match", func(stageCtx context.Context) error {
		var matchErr error
		timings, result.KindCounts, result.DecisionLogPath, matchErr = p.match(stageCtx, words, tokens, result.RunID)
		return matchErr
	})
	if err != nil {
		return result, err
	}

	var blocks []karaoke.Block
	err = p.stage(ctx, "segment", func(stageCtx context.Context) error {
		var report karaoke.Report
		var segErr error
		blocks, report, segErr = karaoke.Segment(transcript.Lines, spans, timings, karaoke.Options{
			Style:          style,
			LineStarts:     transcript.LineStarts,
			RepairInverted: p.cfg.Karaoke.RepairInverted,
			Logger:         logging.WithContext(stageCtx, logging.NewComponentLogger(p.logger, "karaoke")),
		})
		if segErr != nil {
			return services.Wrap(services.ErrAlignment, "segment", "build blocks", "", segErr)
		}
		result.Blocks = len(blocks)
		result.Inverted = report.Inverted
		result.Repaired = report.Repaired
		return nil
	})
	if err != nil {
		return result, err
	}

	err = p.stage(ctx, "write", func(context.Context) error {
		return subtitles.WriteFile(result.OutputPath, blocks)
	})
	if err != nil {
		return result, err
	}

	logger.Info("karaoke subtitles written",
		logging.String(logging.FieldEventType, "pipeline_complete"),
		logging.String("output", result.OutputPath),
		logging.Int("words", result.Words),
		logging.Int("tokens", result.Tokens),
		logging.Int("unknown_tokens", result.Unknown),
		logging.Int("blocks", result.Blocks),
		logging.Int("inverted", len(result.Inverted)),
		logging.Duration("elapsed", p.now().Sub(started)),
	)
	return result, nil
}

// stage runs fn with the stage name attached to the context and logs its
// boundaries.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	stageCtx := services.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, p.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := p.now()
	if err := fn(stageCtx); err != nil {
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String(logging.FieldErrorHint, stageHint(err)),
			logging.Error(err),
		)
		return err
	}
	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", p.now().Sub(started)),
	)
	return nil
}

func stageHint(err error) string {
	switch {
	case errors.Is(err, services.ErrAlignment):
		return "inspect the decision log for the failing word and token"
	case errors.Is(err, services.ErrExternalTool):
		return "run `mfasrt doctor` and check the aligner output"
	case errors.Is(err, services.ErrNotFound):
		return "verify the input paths"
	case errors.Is(err, services.ErrConfiguration):
		return "run `mfasrt config validate`"
	default:
		return "check logs for details"
	}
}

func (p *Pipeline) outputPath(req Request) string {
	if strings.TrimSpace(req.OutputPath) != "" {
		return req.OutputPath
	}
	return filepath.Join(filepath.Dir(req.TextPath), p.cfg.Karaoke.DefaultOutputName)
}

// align invokes the forced aligner on the audio and the transcript lines.
func (p *Pipeline) align(ctx context.Context, req Request, transcript subtitles.Transcript, runID string) (string, error) {
	model, ok := language.Model(req.Language)
	if !ok {
		msg := fmt.Sprintf("unsupported language %q (supported: %s)", req.Language, strings.Join(language.Supported(), ", "))
		return "", services.Wrap(services.ErrValidation, "mfa", "language", msg, nil)
	}
	if !p.skipPreflight {
		results := preflight.RunAll(ctx, p.cfg, req.Language)
		if failed := preflight.Failed(results); len(failed) > 0 {
			return "", services.Wrap(services.ErrConfiguration, "mfa", "preflight", preflight.Summary(results), nil)
		}
	}

	workDir := filepath.Join(p.cfg.Paths.WorkDir, runID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure work dir: %w", err)
	}
	base := textutil.SafeStem(strings.TrimSuffix(filepath.Base(req.TextPath), filepath.Ext(req.TextPath)))
	textPath := filepath.Join(workDir, base+".txt")
	if err := os.WriteFile(textPath, []byte(strings.Join(transcript.Lines, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write aligner transcript: %w", err)
	}

	output := filepath.Join(workDir, base+".json")
	err := p.runner.Align(ctx, mfa.Request{
		Audio:      req.AudioPath,
		Text:       textPath,
		Dictionary: p.cfg.DictionaryPath(model),
		Model:      p.cfg.AcousticModelPath(model),
		Output:     output,
	})
	if err != nil || strings.TrimSpace(req.TokensPath) == "" {
		return output, err
	}
	// The run directory keeps its own copy next to the prepared transcript.
	if err := fileutil.CopyFile(output, req.TokensPath); err != nil {
		return output, fmt.Errorf("copy aligner output: %w", err)
	}
	return req.TokensPath, nil
}

// match aligns words to tokens, recording every decision, and resolves
// the word timings.
func (p *Pipeline) match(ctx context.Context, words []string, tokens []alignment.Token, runID string) ([]alignment.TimedWord, map[alignment.Kind]int, string, error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(p.logger, "alignment"))
	opts := alignment.Options{
		Lookahead: p.cfg.Alignment.Lookahead,
		Logger:    logger,
	}

	var logPath string
	if p.cfg.Alignment.DecisionLog && p.cfg.Paths.LogDir != "" {
		decisions, err := decisionlog.Create(filepath.Join(p.cfg.Paths.LogDir, "decisions", runID+".txt"))
		if err != nil {
			return nil, nil, "", err
		}
		defer func() {
			if closeErr := decisions.Close(); closeErr != nil {
				logging.WarnWithContext(logger, "decision log not written", "decision_log_failure",
					logging.String(logging.FieldImpact, "matcher decisions unavailable for review"),
					logging.Error(closeErr),
				)
			}
		}()
		opts.Recorder = decisions
		logPath = decisions.Path()
	}

	al, err := alignment.Align(words, tokens, opts)
	counts := al.KindCounts()
	if err != nil {
		return nil, counts, logPath, services.Wrap(services.ErrAlignment, "match", "align", "", err)
	}
	timings, err := alignment.Resolve(al, len(words))
	if err != nil {
		return nil, counts, logPath, services.Wrap(services.ErrAlignment, "match", "resolve", "", err)
	}
	return timings, counts, logPath, nil
}

// checkOverlap warns when the transcript and the recognized labels share
// little vocabulary. It never fails the run.
func (p *Pipeline) checkOverlap(logger *slog.Logger, words []string, tokens []alignment.Token) float64 {
	overlap := textutil.VocabularyOverlap(words, alignment.Labels(tokens))
	if overlap < MinVocabularyOverlap {
		logging.WarnWithContext(logger, "transcript and aligner output share little vocabulary", "vocabulary_mismatch",
			logging.Float64("overlap", overlap),
			logging.Float64("threshold", MinVocabularyOverlap),
			logging.String(logging.FieldErrorHint, "confirm the audio and transcript belong together"),
			logging.String(logging.FieldImpact, "alignment may fail or mistime words"),
		)
	}
	return overlap
}

func (p *Pipeline) record(ctx context.Context, req Request, result Result, started time.Time, runErr error) {
	if p.history == nil {
		return
	}
	run := &history.Run{
		ID:          result.RunID,
		Status:      history.StatusSucceeded,
		Language:    languageCode(req.Language),
		AudioPath:   req.AudioPath,
		TextPath:    req.TextPath,
		TokensPath:  result.TokensPath,
		OutputPath:  result.OutputPath,
		DecisionLog: result.DecisionLogPath,
		Words:       result.Words,
		Tokens:      result.Tokens,
		Unknown:     result.Unknown,
		Blocks:      result.Blocks,
		Inverted:    len(result.Inverted),
		Overlap:     result.Overlap,
		KindCounts:  result.kindCounts(),
		StartedAt:   started,
		FinishedAt:  started.Add(result.Duration),
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.ErrorMessage = runErr.Error()
		run.Blocks = 0
	}
	if err := p.history.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "run history not recorded", "history_failure",
			logging.String(logging.FieldImpact, "run will be missing from `mfasrt history`"),
			logging.Error(err),
		)
	}
}

func languageCode(lang string) string {
	if code := language.ToISO2(lang); code != "" {
		return code
	}
	return strings.TrimSpace(lang)
}
