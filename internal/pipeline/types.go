package pipeline

import (
	"time"

	"mfasrt/internal/alignment"
	"mfasrt/internal/karaoke"
)

// Request describes one pipeline run.
type Request struct {
	// TextPath is the transcript, plain text or SRT.
	TextPath string
	// TokensPath is existing aligner JSON. When empty the aligner is run on
	// AudioPath and its output is written to TokensPath or the work directory.
	TokensPath string
	AudioPath  string
	Language   string
	// OutputPath defaults to the configured output name next to TextPath.
	OutputPath string
}

func (r Request) aligns() bool {
	return r.AudioPath != ""
}

// Result summarizes a finished run.
type Result struct {
	RunID           string
	OutputPath      string
	TokensPath      string
	DecisionLogPath string

	Words   int
	Tokens  int
	Unknown int
	Blocks  int
	Overlap float64

	Inverted   []karaoke.Inversion
	Repaired   int
	KindCounts map[alignment.Kind]int
	Duration   time.Duration
}

func (r Result) kindCounts() map[string]int {
	if len(r.KindCounts) == 0 {
		return nil
	}
	out := make(map[string]int, len(r.KindCounts))
	for kind, n := range r.KindCounts {
		out[string(kind)] = n
	}
	return out
}
