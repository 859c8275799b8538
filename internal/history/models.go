package history

import (
	"maps"
	"slices"
	"time"
)

// Status is the outcome of a pipeline run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID          string
	Status      Status
	Language    string
	AudioPath   string
	TextPath    string
	TokensPath  string
	OutputPath  string
	DecisionLog string

	Words    int
	Tokens   int
	Unknown  int
	Blocks   int
	Inverted int
	Overlap  float64

	// KindCounts tallies matcher decisions by kind.
	KindCounts map[string]int

	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Kinds returns the recorded decision kinds in sorted order.
func (r Run) Kinds() []string {
	return slices.Sorted(maps.Keys(r.KindCounts))
}
