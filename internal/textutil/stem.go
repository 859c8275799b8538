package textutil

import (
	"strings"
	"unicode"
)

// SafeStem turns a file name stem into one that is safe to hand to external
// tools: letters and digits are kept lower-cased, any other run of characters
// collapses to a single underscore. An empty result becomes "transcript".
func SafeStem(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pendingSep = true
	}
	if b.Len() == 0 {
		return "transcript"
	}
	return b.String()
}
