package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mfasrt/internal/history"
	"mfasrt/internal/services"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded pipeline runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func withHistory(ctx *commandContext, fn func(*history.Store) error) error {
	store, err := ctx.openHistory()
	if err != nil {
		return err
	}
	if store == nil {
		return services.Wrap(services.ErrConfiguration, "history", "open", "paths.history_db is not set", nil)
	}
	defer store.Close()
	return fn(store)
}

type historyEntry struct {
	ID          string         `json:"id"`
	Status      string         `json:"status"`
	Language    string         `json:"language,omitempty"`
	Audio       string         `json:"audio,omitempty"`
	Text        string         `json:"text,omitempty"`
	Alignment   string         `json:"alignment,omitempty"`
	Output      string         `json:"output,omitempty"`
	DecisionLog string         `json:"decision_log,omitempty"`
	Words       int            `json:"words"`
	Tokens      int            `json:"tokens"`
	Unknown     int            `json:"unknown_tokens"`
	Blocks      int            `json:"blocks"`
	Inverted    int            `json:"inverted"`
	Overlap     float64        `json:"vocabulary_overlap"`
	Kinds       map[string]int `json:"decision_kinds,omitempty"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	DurationMS  int64          `json:"duration_ms"`
}

func newHistoryEntry(run history.Run) historyEntry {
	return historyEntry{
		ID:          run.ID,
		Status:      string(run.Status),
		Language:    run.Language,
		Audio:       run.AudioPath,
		Text:        run.TextPath,
		Alignment:   run.TokensPath,
		Output:      run.OutputPath,
		DecisionLog: run.DecisionLog,
		Words:       run.Words,
		Tokens:      run.Tokens,
		Unknown:     run.Unknown,
		Blocks:      run.Blocks,
		Inverted:    run.Inverted,
		Overlap:     run.Overlap,
		Kinds:       run.KindCounts,
		Error:       run.ErrorMessage,
		StartedAt:   run.StartedAt,
		DurationMS:  run.Duration().Milliseconds(),
	}
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				runs, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					entries := make([]historyEntry, 0, len(runs))
					for _, run := range runs {
						entries = append(entries, newHistoryEntry(run))
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						shortID(run.ID),
						run.StartedAt.Local().Format("2006-01-02 15:04:05"),
						string(run.Status),
						strconv.Itoa(run.Words),
						strconv.Itoa(run.Tokens),
						strconv.Itoa(run.Blocks),
						strconv.FormatFloat(run.Overlap, 'f', 2, 64),
						runSubject(run),
					})
				}
				headers := []string{"Run", "Started", "Status", "Words", "Tokens", "Cues", "Overlap", "Transcript / Error"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run by ID or unique ID prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if run == nil {
					return services.Wrap(services.ErrNotFound, "history", "show", fmt.Sprintf("no run matches %q", args[0]), nil)
				}
				if jsonOut {
					return writeJSON(cmd, newHistoryEntry(*run))
				}
				out := cmd.OutOrStdout()
				rows := [][]string{
					{"ID", run.ID},
					{"Status", string(run.Status)},
					{"Started", run.StartedAt.Local().Format(time.RFC3339)},
					{"Duration", run.Duration().Round(time.Millisecond).String()},
					{"Language", run.Language},
					{"Audio", run.AudioPath},
					{"Transcript", run.TextPath},
					{"Alignment", run.TokensPath},
					{"Output", run.OutputPath},
					{"Decision log", run.DecisionLog},
					{"Words", strconv.Itoa(run.Words)},
					{"Tokens", strconv.Itoa(run.Tokens)},
					{"Unknown tokens", strconv.Itoa(run.Unknown)},
					{"Cues", strconv.Itoa(run.Blocks)},
					{"Inverted cues", strconv.Itoa(run.Inverted)},
					{"Overlap", strconv.FormatFloat(run.Overlap, 'f', 2, 64)},
				}
				for _, kind := range run.Kinds() {
					rows = append(rows, []string{"Matched: " + kind, strconv.Itoa(run.KindCounts[kind])})
				}
				if run.ErrorMessage != "" {
					rows = append(rows, []string{"Error", run.ErrorMessage})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Field", "Value"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(ctx, func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d runs\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 100, "Number of newest runs to keep")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runSubject(run history.Run) string {
	if run.ErrorMessage != "" {
		return truncate(run.ErrorMessage, 60)
	}
	return run.TextPath
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
