package alignment

import "fmt"

// TimedWord is the spoken interval of one transcript word.
type TimedWord struct {
	Start float64
	End   float64
}

// Resolve converts token ranges into word timings. Every word must be
// resolved; an unresolved word or a range count that differs from wordCount
// is an error, never a default.
func Resolve(al Alignment, wordCount int) ([]TimedWord, error) {
	if len(al.Ranges) != wordCount {
		return nil, &MismatchError{
			Kind:       ErrCountMismatch,
			WordIndex:  -1,
			TokenIndex: -1,
			Reason:     fmt.Sprintf("%d token ranges for %d words", len(al.Ranges), wordCount),
		}
	}
	timed := make([]TimedWord, 0, wordCount)
	for idx, r := range al.Ranges {
		if !r.Resolved() || r.Last >= len(al.Tokens) {
			var word string
			if idx < len(al.Words) {
				word = al.Words[idx]
			}
			return nil, &MismatchError{
				Kind:       ErrStructuralMismatch,
				Word:       word,
				WordIndex:  idx,
				TokenIndex: -1,
				Reason:     "word left unresolved",
			}
		}
		timed = append(timed, TimedWord{
			Start: al.Tokens[r.First].Start,
			End:   al.Tokens[r.Last].End,
		})
	}
	return timed, nil
}
