package karaoke_test

import (
	"testing"

	"mfasrt/internal/karaoke"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2DE471", want: "2DE471FF"},
		{in: "#2de471", want: "2DE471FF"},
		{in: "11223344", want: "11223344"},
		{in: "green", wantErr: true},
		{in: "12345", wantErr: true},
	}
	for _, tc := range tests {
		got, err := karaoke.ParseColor(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseColor(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseColor(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewStyle(t *testing.T) {
	style, err := karaoke.NewStyle("FF0000", "#ffffff80")
	if err != nil {
		t.Fatalf("NewStyle: %v", err)
	}
	if style.Highlight != "FF0000FF" || style.Base != "FFFFFF80" {
		t.Fatalf("unexpected style: %+v", style)
	}
	if _, err := karaoke.NewStyle("nope", "000000"); err == nil {
		t.Fatal("expected error for invalid highlight")
	}
}
