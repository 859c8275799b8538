package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"mfasrt/internal/alignment"
	"mfasrt/internal/config"
	"mfasrt/internal/history"
	"mfasrt/internal/logging"
	"mfasrt/internal/mfa"
	"mfasrt/internal/pipeline"
	"mfasrt/internal/services"
	"mfasrt/internal/testsupport"
)

const helloWorldSRT = "1\n00:00:00,000 --> 00:00:00,500\n" +
	"<font color=#2DE471FF>Hello </font><font color=#000000FF>world</font>\n\n" +
	"2\n00:00:00,500 --> 00:00:00,900\n" +
	"<font color=#000000FF>Hello </font><font color=#2DE471FF>world</font>\n\n"

func newPipeline(t *testing.T, cfg *config.Config, opts ...pipeline.Option) (*pipeline.Pipeline, *history.Store) {
	t.Helper()
	store := testsupport.MustOpenHistory(t, cfg)
	opts = append([]pipeline.Option{pipeline.WithHistory(store)}, opts...)
	return pipeline.New(cfg, logging.NewNop(), opts...), store
}

func TestRunWithExistingAlignerOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "song", "lyrics.txt"), "Hello world\n")
	tokens := testsupport.WriteFile(t, filepath.Join(base, "song", "lyrics.json"), testsupport.AlignerJSON(t,
		testsupport.Entry{Start: 0.0, End: 0.4, Label: "hello"},
		testsupport.Entry{Start: 0.4, End: 0.5, Label: "<eps>"},
		testsupport.Entry{Start: 0.5, End: 0.9, Label: "world"},
	))

	p, store := newPipeline(t, cfg)
	result, err := p.Run(context.Background(), pipeline.Request{TextPath: text, TokensPath: tokens})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantOutput := filepath.Join(base, "song", "animated_subs.srt")
	if result.OutputPath != wantOutput {
		t.Fatalf("output = %q, want %q", result.OutputPath, wantOutput)
	}
	if got := testsupport.ReadFile(t, wantOutput); got != helloWorldSRT {
		t.Fatalf("srt mismatch\n got: %q\nwant: %q", got, helloWorldSRT)
	}
	if result.Words != 2 || result.Tokens != 2 || result.Blocks != 2 {
		t.Fatalf("unexpected counts %+v", result)
	}
	if result.KindCounts[alignment.KindExact] != 2 {
		t.Fatalf("unexpected kind counts %v", result.KindCounts)
	}

	log := testsupport.ReadFile(t, result.DecisionLogPath)
	if !strings.Contains(log, "2 decisions") {
		t.Fatalf("decision log missing footer:\n%s", log)
	}

	run, err := store.Get(context.Background(), result.RunID)
	if err != nil || run == nil {
		t.Fatalf("expected history record, got %v %v", run, err)
	}
	if run.Status != history.StatusSucceeded || run.Blocks != 2 || run.KindCounts["exact"] != 2 {
		t.Fatalf("unexpected history record %#v", run)
	}
}

func TestRunHonorsExplicitOutputAndSRTTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "cues.srt"),
		"1\n00:00:01,000 --> 00:00:02,000\n<i>Hello</i> world\n\n")
	tokens := testsupport.WriteFile(t, filepath.Join(base, "cues.json"), testsupport.AlignerJSON(t,
		testsupport.Entry{Start: 1.2, End: 1.5, Label: "hello"},
		testsupport.Entry{Start: 1.6, End: 1.9, Label: "world"},
	))
	output := filepath.Join(base, "out", "karaoke.srt")

	p := pipeline.New(cfg, logging.NewNop())
	result, err := p.Run(context.Background(), pipeline.Request{TextPath: text, TokensPath: tokens, OutputPath: output})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := testsupport.ReadFile(t, output)
	if !strings.HasPrefix(got, "1\n00:00:01,000 --> 00:00:01,600\n") {
		t.Fatalf("first cue should start at the explicit line start:\n%s", got)
	}
	if result.Blocks != 2 {
		t.Fatalf("blocks = %d, want 2", result.Blocks)
	}
}

func TestRunFailsOnStructuralMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "lyrics.txt"), "one two three\n")
	tokens := testsupport.WriteFile(t, filepath.Join(base, "lyrics.json"), testsupport.AlignerJSON(t,
		testsupport.Entry{Start: 0, End: 0.3, Label: "one"},
		testsupport.Entry{Start: 0.3, End: 0.6, Label: "two"},
	))

	p, store := newPipeline(t, cfg)
	result, err := p.Run(context.Background(), pipeline.Request{TextPath: text, TokensPath: tokens})
	if !errors.Is(err, services.ErrAlignment) {
		t.Fatalf("expected alignment error, got %v", err)
	}
	if !errors.Is(err, alignment.ErrStructuralMismatch) {
		t.Fatalf("expected structural mismatch, got %v", err)
	}
	if services.ExitCode(err) != services.ExitAlignment {
		t.Fatalf("exit code = %d", services.ExitCode(err))
	}
	if _, statErr := os.Stat(result.OutputPath); !os.IsNotExist(statErr) {
		t.Fatalf("no SRT should be written on failure, stat err = %v", statErr)
	}
	if log := testsupport.ReadFile(t, result.DecisionLogPath); !strings.Contains(log, "FAILED") {
		t.Fatalf("decision log should record the failure:\n%s", log)
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one history run, got %v %v", runs, err)
	}
	if runs[0].Status != history.StatusFailed || !strings.Contains(runs[0].ErrorMessage, "tokens exhausted") {
		t.Fatalf("unexpected failed run %#v", runs[0])
	}
}

func TestRunValidatesRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory())
	base := testsupport.BaseDir(cfg)
	blank := testsupport.WriteFile(t, filepath.Join(base, "blank.txt"), "... !!!\n")
	tokens := testsupport.WriteFile(t, filepath.Join(base, "t.json"), testsupport.AlignerJSON(t))

	tests := []struct {
		name string
		req  pipeline.Request
		want error
	}{
		{"missing text", pipeline.Request{TokensPath: tokens}, services.ErrValidation},
		{"missing tokens and audio", pipeline.Request{TextPath: blank}, services.ErrValidation},
		{"missing transcript file", pipeline.Request{TextPath: filepath.Join(base, "nope.txt"), TokensPath: tokens}, services.ErrNotFound},
		{"no words", pipeline.Request{TextPath: blank, TokensPath: tokens}, services.ErrValidation},
		{"unsupported language", pipeline.Request{TextPath: testsupport.WriteFile(t, filepath.Join(base, "ok.txt"), "hi\n"), AudioPath: "a.wav", Language: "xx"}, services.ErrValidation},
	}
	p := pipeline.New(cfg, logging.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Run(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRunInvokesAligner(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedAligner(), testsupport.WithModels("french_mfa"))
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "chanson.txt"), "Bonjour l'ami\n")
	audio := testsupport.WriteFile(t, filepath.Join(base, "chanson.wav"), "RIFF")

	runner := mfa.NewRunner(pipeline.RunnerConfig(cfg), nil)
	var gotArgs []string
	runner.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		gotArgs = args
		output := args[len(args)-5]
		json := testsupport.AlignerJSON(t,
			testsupport.Entry{Start: 0.1, End: 0.5, Label: "bonjour"},
			testsupport.Entry{Start: 0.5, End: 0.9, Label: "l'ami"},
		)
		return os.WriteFile(output, []byte(json), 0o644)
	})

	p, _ := newPipeline(t, cfg, pipeline.WithRunner(runner))
	result, err := p.Run(context.Background(), pipeline.Request{TextPath: text, AudioPath: audio, Language: "fr"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !slices.Contains(gotArgs, cfg.DictionaryPath("french_mfa")) || !slices.Contains(gotArgs, cfg.AcousticModelPath("french_mfa")) {
		t.Fatalf("aligner args missing model files: %v", gotArgs)
	}
	wantJSON := filepath.Join(cfg.Paths.WorkDir, result.RunID, "chanson.json")
	if result.TokensPath != wantJSON {
		t.Fatalf("tokens path = %q, want %q", result.TokensPath, wantJSON)
	}
	prepared := testsupport.ReadFile(t, filepath.Join(cfg.Paths.WorkDir, result.RunID, "chanson.txt"))
	if prepared != "Bonjour l'ami\n" {
		t.Fatalf("unexpected aligner transcript %q", prepared)
	}
	if result.Blocks != 2 {
		t.Fatalf("blocks = %d, want 2", result.Blocks)
	}
}

func TestRunCopiesAlignerOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithStubbedAligner(), testsupport.WithModels("french_mfa"))
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "chanson.txt"), "Bonjour\n")
	audio := testsupport.WriteFile(t, filepath.Join(base, "chanson.wav"), "RIFF")
	keep := filepath.Join(base, "kept", "chanson.json")

	runner := mfa.NewRunner(pipeline.RunnerConfig(cfg), nil)
	runner.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		json := testsupport.AlignerJSON(t, testsupport.Entry{Start: 0.2, End: 0.6, Label: "bonjour"})
		return os.WriteFile(args[len(args)-5], []byte(json), 0o644)
	})

	p := pipeline.New(cfg, logging.NewNop(), pipeline.WithRunner(runner))
	result, err := p.Run(context.Background(), pipeline.Request{TextPath: text, AudioPath: audio, Language: "fr", TokensPath: keep})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.TokensPath != keep {
		t.Fatalf("tokens path = %q, want %q", result.TokensPath, keep)
	}
	scratch := filepath.Join(cfg.Paths.WorkDir, result.RunID, "chanson.json")
	if testsupport.ReadFile(t, keep) != testsupport.ReadFile(t, scratch) {
		t.Fatal("kept alignment should match the run directory copy")
	}
}

func TestRunStopsWhenAlignerFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithModels("english_us_mfa310"))
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "song.txt"), "hello\n")
	audio := testsupport.WriteFile(t, filepath.Join(base, "song.wav"), "RIFF")

	runner := mfa.NewRunner(pipeline.RunnerConfig(cfg), nil)
	runner.WithCommandRunner(func(context.Context, string, ...string) error {
		return errors.New("exit status 1")
	})
	p := pipeline.New(cfg, logging.NewNop(), pipeline.WithRunner(runner), pipeline.WithoutPreflight())
	result, err := p.Run(context.Background(), pipeline.Request{TextPath: text, AudioPath: audio, Language: "en"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, statErr := os.Stat(result.OutputPath); !os.IsNotExist(statErr) {
		t.Fatal("SRT must not be generated after aligner failure")
	}
}

func TestRunPreflightBlocksMissingModels(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithStubbedAligner())
	base := testsupport.BaseDir(cfg)
	text := testsupport.WriteFile(t, filepath.Join(base, "song.txt"), "hello\n")
	audio := testsupport.WriteFile(t, filepath.Join(base, "song.wav"), "RIFF")

	runner := mfa.NewRunner(pipeline.RunnerConfig(cfg), nil)
	runner.WithCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("aligner must not run when preflight fails")
		return nil
	})
	p := pipeline.New(cfg, logging.NewNop(), pipeline.WithRunner(runner))
	_, err := p.Run(context.Background(), pipeline.Request{TextPath: text, AudioPath: audio, Language: "pt"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Acoustic model") {
		t.Fatalf("error should name the missing model: %v", err)
	}
}
