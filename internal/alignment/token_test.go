package alignment_test

import (
	"testing"

	"mfasrt/internal/alignment"
)

func TestNewTokensClassifiesPlaceholders(t *testing.T) {
	toks := alignment.NewTokens([]alignment.Triple{
		{Start: 0, End: 0.2, Label: "<eps>"},
		{Start: 0.2, End: 0.5, Label: "Bonjour,"},
		{Start: 0.5, End: 0.9, Label: "<unk>"},
	})
	if !toks[0].Skip || toks[0].Unknown {
		t.Fatalf("expected skip marker, got %+v", toks[0])
	}
	if toks[1].Label != "bonjour" || toks[1].Raw != "Bonjour," {
		t.Fatalf("unexpected normalized token: %+v", toks[1])
	}
	if !toks[2].Unknown || toks[2].Label != "<unk>" {
		t.Fatalf("expected unknown placeholder, got %+v", toks[2])
	}

	kept := alignment.DropSkips(toks)
	if len(kept) != 2 {
		t.Fatalf("expected 2 tokens after DropSkips, got %d", len(kept))
	}
	if alignment.CountUnknown(kept) != 1 {
		t.Fatalf("expected one unknown token")
	}
	if labels := alignment.Labels(kept); len(labels) != 1 || labels[0] != "bonjour" {
		t.Fatalf("unexpected labels: %v", labels)
	}
}
