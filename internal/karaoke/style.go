package karaoke

import (
	"fmt"
	"regexp"
	"strings"
)

// Default colors, as RRGGBBAA.
const (
	DefaultHighlight = "2DE471FF"
	DefaultBase      = "000000FF"
)

var colorPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// Style holds the font colors used in block markup.
type Style struct {
	Highlight string
	Base      string
}

// DefaultStyle returns the green-on-black style.
func DefaultStyle() Style {
	return Style{Highlight: DefaultHighlight, Base: DefaultBase}
}

// NewStyle parses two hex colors. Values may carry a leading '#' and either
// six digits (alpha defaults to FF) or eight.
func NewStyle(highlight, base string) (Style, error) {
	hl, err := ParseColor(highlight)
	if err != nil {
		return Style{}, fmt.Errorf("highlight color: %w", err)
	}
	bs, err := ParseColor(base)
	if err != nil {
		return Style{}, fmt.Errorf("base color: %w", err)
	}
	return Style{Highlight: hl, Base: bs}, nil
}

// ParseColor canonicalizes a hex color to eight upper-case digits.
func ParseColor(value string) (string, error) {
	color := strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(value), "#"))
	if len(color) == 6 {
		color += "FF"
	}
	if !colorPattern.MatchString(color) {
		return "", fmt.Errorf("invalid hex color %q", value)
	}
	return color, nil
}

// render wraps line[hs:he] in the highlight color and any remaining text in
// the base color. Empty segments produce no markup.
func (s Style) render(line string, hs, he int) string {
	var b strings.Builder
	b.Grow(len(line) + 80)
	if hs > 0 {
		s.font(&b, s.Base, line[:hs])
	}
	s.font(&b, s.Highlight, line[hs:he])
	if he < len(line) {
		s.font(&b, s.Base, line[he:])
	}
	return b.String()
}

func (s Style) font(b *strings.Builder, color, text string) {
	if text == "" {
		return
	}
	b.WriteString("<font color=#")
	b.WriteString(color)
	b.WriteString(">")
	b.WriteString(text)
	b.WriteString("</font>")
}
