package textutil

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// wordPattern covers Latin letters with the Latin-1 and Latin Extended-A
// accented ranges, Cyrillic, digits, straight and curly apostrophes, and hyphens.
var wordPattern = regexp.MustCompile(`[A-Za-z0-9\x{00C0}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{017F}\x{0400}-\x{04FF}'\x{2019}\-]+`)

// WordSpan locates one transcript word inside its source line. Start and End
// are byte offsets into the line (End exclusive).
type WordSpan struct {
	Line  int
	Start int
	End   int
}

// ComposeLines returns the NFC form of every line. Decomposed accents would
// otherwise split words at the combining mark.
func ComposeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = norm.NFC.String(line)
	}
	return out
}

// TokenizeLines scans each line left to right and returns the normalized words
// together with their spans, in line-then-position order. Lines without any
// word characters contribute nothing.
func TokenizeLines(lines []string) ([]string, []WordSpan) {
	var words []string
	var spans []WordSpan
	for li, line := range lines {
		for _, loc := range wordPattern.FindAllStringIndex(line, -1) {
			words = append(words, NormalizeLabel(line[loc[0]:loc[1]]))
			spans = append(spans, WordSpan{Line: li, Start: loc[0], End: loc[1]})
		}
	}
	return words, spans
}
