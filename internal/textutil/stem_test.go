package textutil

import "testing"

func TestSafeStem(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "transcript"},
		{"chanson", "chanson"},
		{"Été Indien (live)", "été_indien_live"},
		{"  01 - Intro.final ", "01_-_intro_final"},
		{"***", "transcript"},
		{"Кино", "кино"},
	}
	for _, tt := range tests {
		if got := SafeStem(tt.input); got != tt.want {
			t.Errorf("SafeStem(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
