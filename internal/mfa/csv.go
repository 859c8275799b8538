package mfa

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// WriteWordsCSV exports the word tier as `word,start,end` rows. With phones,
// each word row (phone empty) is followed by the phones that fall inside
// the word interval, as `word,phone,start,end` rows with the word empty.
func WriteWordsCSV(w io.Writer, doc Document, withPhones bool) error {
	cw := csv.NewWriter(w)
	if !withPhones {
		if err := cw.Write([]string{"word", "start", "end"}); err != nil {
			return err
		}
		for _, word := range doc.Words {
			if err := cw.Write([]string{word.Label, formatSeconds(word.Start), formatSeconds(word.End)}); err != nil {
				return err
			}
		}
		return flush(cw)
	}

	phones := slices.Clone(doc.Phones)
	slices.SortStableFunc(phones, func(a, b Entry) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	if err := cw.Write([]string{"word", "phone", "start", "end"}); err != nil {
		return err
	}
	for _, word := range doc.Words {
		if err := cw.Write([]string{word.Label, "", formatSeconds(word.Start), formatSeconds(word.End)}); err != nil {
			return err
		}
		for _, phone := range phones {
			if phone.Start < word.Start || phone.End > word.End {
				continue
			}
			if err := cw.Write([]string{"", phone.Label, formatSeconds(phone.Start), formatSeconds(phone.End)}); err != nil {
				return err
			}
		}
	}
	return flush(cw)
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
