package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mfasrt/internal/language"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "languages",
		Short:       "List languages with a known pretrained aligner model",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := language.Supported()
			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				model, _ := language.Model(code)
				rows = append(rows, []string{code, language.DisplayName(code), model})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"Code", "Language", "Model"}, rows, nil))
			return nil
		},
	}
}
