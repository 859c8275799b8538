package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reserved aligner labels.
const (
	UnknownLabel = "<unk>"
	SkipLabel    = "<eps>"
)

var quoteReplacer = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"“", "\"",
	"”", "\"",
)

// IsPlaceholder reports whether label is one of the reserved aligner labels.
func IsPlaceholder(label string) bool {
	return label == UnknownLabel || label == SkipLabel
}

// NormalizeLabel canonicalizes a raw label or transcript word for comparison.
// Smart quotes become straight quotes, the text is lower-cased, and leading or
// trailing punctuation is removed except apostrophes and hyphens so that
// contractions and hyphenated compounds survive. Reserved labels are returned
// unchanged.
func NormalizeLabel(raw string) string {
	if IsPlaceholder(raw) {
		return raw
	}
	value := quoteReplacer.Replace(raw)
	// Casers are stateful; build one per call.
	value = cases.Lower(language.Und).String(value)
	return strings.TrimFunc(value, isStrippable)
}

func isStrippable(r rune) bool {
	if r == '\'' || r == '-' {
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// AlnumKey reduces s to its lower-cased letters and digits. It is the unit the
// matcher accumulates when joining split aligner tokens back into a word.
func AlnumKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
