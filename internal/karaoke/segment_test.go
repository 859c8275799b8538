package karaoke_test

import (
	"errors"
	"regexp"
	"testing"

	"mfasrt/internal/alignment"
	"mfasrt/internal/karaoke"
	"mfasrt/internal/textutil"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func segment(t *testing.T, lines []string, timings []alignment.TimedWord, opts karaoke.Options) ([]karaoke.Block, karaoke.Report) {
	t.Helper()
	_, spans := textutil.TokenizeLines(lines)
	blocks, report, err := karaoke.Segment(lines, spans, timings, opts)
	if err != nil {
		t.Fatalf("Segment: %v", err)
	}
	return blocks, report
}

func TestSegmentHelloWorld(t *testing.T) {
	blocks, _ := segment(t, []string{"Hello world"}, []alignment.TimedWord{
		{Start: 0.0, End: 0.4},
		{Start: 0.5, End: 0.9},
	}, karaoke.Options{Style: karaoke.DefaultStyle()})

	want := []karaoke.Block{
		{Index: 1, Start: 0.0, End: 0.5, Text: "<font color=#2DE471FF>Hello </font><font color=#000000FF>world</font>", Line: 0, Word: 0},
		{Index: 2, Start: 0.5, End: 0.9, Text: "<font color=#000000FF>Hello </font><font color=#2DE471FF>world</font>", Line: 0, Word: 1},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %d blocks, got %d", len(want), len(blocks))
	}
	for idx := range want {
		if blocks[idx] != want[idx] {
			t.Fatalf("block %d:\n got %+v\nwant %+v", idx, blocks[idx], want[idx])
		}
	}
}

func TestSegmentHighlightCoversLine(t *testing.T) {
	lines := []string{
		"« Bonjour, l'ami ! »",
		"",
		"  well-known -- words...  ",
	}
	words, _ := textutil.TokenizeLines(lines)
	timings := make([]alignment.TimedWord, len(words))
	for idx := range timings {
		timings[idx] = alignment.TimedWord{Start: float64(idx), End: float64(idx) + 0.5}
	}
	blocks, _ := segment(t, lines, timings, karaoke.Options{})

	for _, b := range blocks {
		if got := tagPattern.ReplaceAllString(b.Text, ""); got != lines[b.Line] {
			t.Fatalf("block %d lost text: got %q want %q", b.Index, got, lines[b.Line])
		}
	}
	if len(blocks) != len(words) {
		t.Fatalf("expected one block per word, got %d for %d words", len(blocks), len(words))
	}
}

func TestSegmentContiguity(t *testing.T) {
	lines := []string{"one two", "three four"}
	timings := []alignment.TimedWord{
		{Start: 1.0, End: 1.3},
		{Start: 1.5, End: 1.9},
		{Start: 3.0, End: 3.4},
		{Start: 3.6, End: 4.2},
	}
	blocks, _ := segment(t, lines, timings, karaoke.Options{RepairInverted: true})

	for k := 0; k+1 < len(blocks); k++ {
		if blocks[k].End != blocks[k+1].Start {
			t.Fatalf("gap between block %d and %d: %v != %v", k+1, k+2, blocks[k].End, blocks[k+1].Start)
		}
	}
	last := blocks[len(blocks)-1]
	if last.End != 4.2 || last.End < last.Start {
		t.Fatalf("unexpected final block: %+v", last)
	}
	if blocks[1].End != 3.0 {
		t.Fatalf("expected end of line to stretch to next line, got %v", blocks[1].End)
	}
	for idx, b := range blocks {
		if b.Index != idx+1 {
			t.Fatalf("expected sequential numbering, got %d at %d", b.Index, idx)
		}
	}
}

func TestSegmentUsesLineStarts(t *testing.T) {
	lines := []string{"one two", "three"}
	timings := []alignment.TimedWord{{Start: 1.0, End: 1.3}, {Start: 1.5, End: 1.9}, {Start: 3.0, End: 3.4}}
	blocks, _ := segment(t, lines, timings, karaoke.Options{LineStarts: []float64{0.8, 2.5}})

	if blocks[0].Start != 0.8 {
		t.Fatalf("expected explicit line start, got %v", blocks[0].Start)
	}
	if blocks[1].Start != 1.5 {
		t.Fatalf("second word should use its own start, got %v", blocks[1].Start)
	}
	if blocks[2].Start != 2.5 || blocks[1].End != 2.5 {
		t.Fatalf("expected second line to start at 2.5, got %+v / %+v", blocks[1], blocks[2])
	}
}

func TestSegmentRepairsInvertedIntervals(t *testing.T) {
	lines := []string{"a b c"}
	timings := []alignment.TimedWord{{Start: 1.0, End: 1.2}, {Start: 0.5, End: 0.7}, {Start: 1.5, End: 1.8}}

	blocks, report := segment(t, lines, timings, karaoke.Options{RepairInverted: true})
	if len(report.Inverted) != 1 || report.Inverted[0].Index != 1 {
		t.Fatalf("expected block 1 reported inverted, got %+v", report.Inverted)
	}
	if report.Repaired != 1 {
		t.Fatalf("expected one repair, got %d", report.Repaired)
	}
	for _, b := range blocks {
		if b.Start > b.End {
			t.Fatalf("block %d still inverted: %+v", b.Index, b)
		}
	}

	_, report = segment(t, lines, timings, karaoke.Options{})
	if len(report.Inverted) != 1 || report.Repaired != 0 {
		t.Fatalf("expected warning only without repair, got %+v", report)
	}
}

func TestSegmentClampsFinalBlock(t *testing.T) {
	blocks, report := segment(t, []string{"solo"}, []alignment.TimedWord{{Start: 2.0, End: 1.5}}, karaoke.Options{RepairInverted: true})
	if blocks[0].End != 2.0 {
		t.Fatalf("expected final end clamped to start, got %+v", blocks[0])
	}
	if len(report.Inverted) != 1 {
		t.Fatalf("expected inversion reported, got %+v", report)
	}
}

func TestSegmentRejectsCountMismatch(t *testing.T) {
	lines := []string{"one two"}
	_, spans := textutil.TokenizeLines(lines)
	_, _, err := karaoke.Segment(lines, spans, []alignment.TimedWord{{Start: 0, End: 1}}, karaoke.Options{})
	if !errors.Is(err, alignment.ErrCountMismatch) {
		t.Fatalf("expected count mismatch, got %v", err)
	}
}
