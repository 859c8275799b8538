package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"mfasrt/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "aligner", "align_one", "mfa exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"aligner", "align_one", "mfa exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"alignment", services.Wrap(services.ErrAlignment, "alignment", "match", "", errors.New("x")), services.ExitAlignment},
		{"validation", services.Wrap(services.ErrValidation, "transcript", "parse", "bad", nil), services.ExitInvalidInput},
		{"configuration", fmt.Errorf("load: %w", services.ErrConfiguration), services.ExitInvalidInput},
		{"external", services.Wrap(services.ErrExternalTool, "aligner", "run", "", nil), services.ExitExternalTool},
		{"generic", errors.New("io"), services.ExitGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := services.ExitCode(tt.err); got != tt.want {
				t.Fatalf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
