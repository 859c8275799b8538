package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mfasrt/internal/fileutil"
	"mfasrt/internal/mfa"
)

func newExportCSVCommand() *cobra.Command {
	var withPhones bool

	cmd := &cobra.Command{
		Use:         "export-csv <alignment.json> <output.csv>",
		Short:       "Export aligner word timings as CSV",
		Long:        "Write word,start,end rows from the aligner word tier. With --phones each word row\nis followed by the phones inside it as word,phone,start,end rows.",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := mfa.LoadFile(args[0])
			if err != nil {
				return err
			}
			err = fileutil.WriteAtomic(args[1], 0o644, func(w io.Writer) error {
				return mfa.WriteWordsCSV(w, doc, withPhones)
			})
			if err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d words to %s\n", len(doc.Words), args[1])
			return nil
		},
	}

	cmd.Flags().BoolVar(&withPhones, "phones", false, "Group phones under their words")
	return cmd
}
