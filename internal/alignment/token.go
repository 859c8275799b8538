package alignment

import "mfasrt/internal/textutil"

// Token is one time-stamped label produced by the forced aligner.
type Token struct {
	Raw     string
	Label   string
	Start   float64
	End     float64
	Unknown bool
	Skip    bool
}

// Triple is the upstream (start, end, label) form of a token.
type Triple struct {
	Start float64
	End   float64
	Label string
}

// NewToken builds a Token from a raw aligner label.
func NewToken(start, end float64, raw string) Token {
	return Token{
		Raw:     raw,
		Label:   textutil.NormalizeLabel(raw),
		Start:   start,
		End:     end,
		Unknown: raw == textutil.UnknownLabel,
		Skip:    raw == textutil.SkipLabel,
	}
}

// NewTokens converts upstream triples in occurrence order.
func NewTokens(triples []Triple) []Token {
	tokens := make([]Token, 0, len(triples))
	for _, t := range triples {
		tokens = append(tokens, NewToken(t.Start, t.End, t.Label))
	}
	return tokens
}

// DropSkips returns the tokens that are not skip markers. Token ranges
// produced by Align index into this filtered sequence.
func DropSkips(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Skip {
			continue
		}
		out = append(out, t)
	}
	return out
}

// CountUnknown returns the number of unknown placeholders in tokens.
func CountUnknown(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		if t.Unknown {
			n++
		}
	}
	return n
}

// Labels returns the normalized labels of every recognized token.
func Labels(tokens []Token) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.Unknown || t.Skip {
			continue
		}
		out = append(out, t.Label)
	}
	return out
}
