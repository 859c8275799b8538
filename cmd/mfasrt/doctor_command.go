package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mfasrt/internal/preflight"
	"mfasrt/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var lang string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the aligner, its models and the working directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, lang)
			if jsonOut {
				if err := writeJSON(cmd, doctorEntries(results)); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, r := range results {
					status := "ok"
					if !r.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{r.Name, status, r.Detail})
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderTable(out, []string{"Check", "Status", "Detail"}, rows, nil))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "doctor", "", fmt.Sprintf("%d checks failed", len(failed)), nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lang, "language", "l", "fr", "Language whose dictionary and model to check (empty to skip)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	return cmd
}

type doctorEntry struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

func doctorEntries(results []preflight.Result) []doctorEntry {
	out := make([]doctorEntry, 0, len(results))
	for _, r := range results {
		out = append(out, doctorEntry{Name: r.Name, Passed: r.Passed, Detail: r.Detail})
	}
	return out
}
