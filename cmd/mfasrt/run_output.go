package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"mfasrt/internal/pipeline"
)

type inversionSummary struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type runSummary struct {
	RunID       string             `json:"run_id"`
	Output      string             `json:"output"`
	Alignment   string             `json:"alignment"`
	DecisionLog string             `json:"decision_log,omitempty"`
	Words       int                `json:"words"`
	Tokens      int                `json:"tokens"`
	Unknown     int                `json:"unknown_tokens"`
	Blocks      int                `json:"blocks"`
	Overlap     float64            `json:"vocabulary_overlap"`
	Kinds       map[string]int     `json:"decision_kinds"`
	Inverted    []inversionSummary `json:"inverted,omitempty"`
	Repaired    int                `json:"repaired"`
	DurationMS  int64              `json:"duration_ms"`
}

func newRunSummary(result pipeline.Result) runSummary {
	summary := runSummary{
		RunID:       result.RunID,
		Output:      result.OutputPath,
		Alignment:   result.TokensPath,
		DecisionLog: result.DecisionLogPath,
		Words:       result.Words,
		Tokens:      result.Tokens,
		Unknown:     result.Unknown,
		Blocks:      result.Blocks,
		Overlap:     result.Overlap,
		Kinds:       make(map[string]int, len(result.KindCounts)),
		Repaired:    result.Repaired,
		DurationMS:  result.Duration.Milliseconds(),
	}
	for kind, n := range result.KindCounts {
		summary.Kinds[string(kind)] = n
	}
	for _, inv := range result.Inverted {
		summary.Inverted = append(summary.Inverted, inversionSummary{Index: inv.Index, Start: inv.Start, End: inv.End})
	}
	return summary
}

func printRunSummary(cmd *cobra.Command, result pipeline.Result) {
	out := cmd.OutOrStdout()
	summary := newRunSummary(result)
	fmt.Fprintf(out, "Wrote %d cues to %s\n", summary.Blocks, summary.Output)
	fmt.Fprintf(out, "Run ID: %s\n", summary.RunID)
	if summary.DecisionLog != "" {
		fmt.Fprintf(out, "Decision log: %s\n", summary.DecisionLog)
	}

	rows := [][]string{
		{"words", strconv.Itoa(summary.Words)},
		{"tokens", strconv.Itoa(summary.Tokens)},
		{"unknown tokens", strconv.Itoa(summary.Unknown)},
		{"vocabulary overlap", strconv.FormatFloat(summary.Overlap, 'f', 2, 64)},
	}
	for _, kind := range slices.Sorted(maps.Keys(summary.Kinds)) {
		rows = append(rows, []string{"matched: " + kind, strconv.Itoa(summary.Kinds[kind])})
	}
	if len(summary.Inverted) > 0 {
		rows = append(rows, []string{"inverted cues", strconv.Itoa(len(summary.Inverted))})
		rows = append(rows, []string{"repaired cues", strconv.Itoa(summary.Repaired)})
	}
	fmt.Fprintln(out, renderTable(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}
