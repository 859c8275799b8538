package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mfasrt/internal/config"
	"mfasrt/internal/logging"
	"mfasrt/internal/pipeline"
	"mfasrt/internal/services"
)

// styleFlags holds per-invocation color overrides shared by align and run.
type styleFlags struct {
	highlight string
	base      string
}

func (s *styleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.highlight, "highlight-color", "", "Highlight color as RRGGBB[AA] hex (overrides config)")
	cmd.Flags().StringVarP(&s.base, "base-color", "b", "", "Base text color as RRGGBB[AA] hex (overrides config)")
}

func (s *styleFlags) apply(cfg *config.Config) *config.Config {
	out := *cfg
	if v := strings.TrimPrefix(strings.TrimSpace(s.highlight), "#"); v != "" {
		out.Karaoke.HighlightColor = strings.ToUpper(v)
	}
	if v := strings.TrimPrefix(strings.TrimSpace(s.base), "#"); v != "" {
		out.Karaoke.BaseColor = strings.ToUpper(v)
	}
	return &out
}

func newAlignCommand(ctx *commandContext) *cobra.Command {
	var (
		textPath   string
		tokensPath string
		outputPath string
		jsonOut    bool
		style      styleFlags
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Build karaoke subtitles from an existing aligner JSON file",
		Long: "Match transcript words against the word tier of a Montreal Forced Aligner JSON\n" +
			"file and write one highlighted SRT cue per word.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, style, jsonOut, pipeline.Request{
				TextPath:   textPath,
				TokensPath: tokensPath,
				OutputPath: outputPath,
			})
		},
	}

	cmd.Flags().StringVarP(&textPath, "text", "t", "", "Transcript (plain text or .srt)")
	cmd.Flags().StringVarP(&tokensPath, "alignment", "j", "", "Aligner JSON output")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output SRT (default: configured name next to the transcript)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")
	style.register(cmd)
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("alignment")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		lang       string
		audioPath  string
		textPath   string
		tokensPath string
		outputPath string
		jsonOut    bool
		style      styleFlags
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the forced aligner, then build karaoke subtitles",
		Long: "Invoke `mfa align_one` on the audio and transcript with the pretrained model for\n" +
			"the language, then build karaoke subtitles from the aligner output. Subtitles\n" +
			"are not generated when the aligner fails.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, ctx, style, jsonOut, pipeline.Request{
				Language:   lang,
				AudioPath:  audioPath,
				TextPath:   textPath,
				TokensPath: tokensPath,
				OutputPath: outputPath,
			})
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "", "Language code (fr, en, ru, pt, ...) or MFA model name")
	cmd.Flags().StringVarP(&audioPath, "wav", "w", "", "Audio file to align")
	cmd.Flags().StringVarP(&textPath, "text", "t", "", "Transcript (plain text or .srt)")
	cmd.Flags().StringVarP(&tokensPath, "alignment", "j", "", "Where to keep the aligner JSON (default: work directory)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output SRT (default: configured name next to the transcript)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")
	style.register(cmd)
	_ = cmd.MarkFlagRequired("language")
	_ = cmd.MarkFlagRequired("wav")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, style styleFlags, jsonOut bool, req pipeline.Request) error {
	baseCfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	cfg := style.apply(baseCfg)
	if err := cfg.Validate(); err != nil {
		return services.Wrap(services.ErrConfiguration, "config", "colors", "", err)
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	store, err := ctx.openHistory()
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_failure",
			logging.String(logging.FieldImpact, "this run will not be recorded"),
			logging.Error(err),
		)
	} else if store != nil {
		defer store.Close()
		opts = append(opts, pipeline.WithHistory(store))
	}

	result, runErr := pipeline.New(cfg, logger, opts...).Run(cmd.Context(), req)
	if runErr != nil {
		if result.DecisionLogPath != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Decision log: %s\n", result.DecisionLogPath)
		}
		return runErr
	}
	if jsonOut {
		return writeJSON(cmd, newRunSummary(result))
	}
	printRunSummary(cmd, result)
	return nil
}
