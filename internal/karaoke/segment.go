package karaoke

import (
	"fmt"
	"log/slog"

	"mfasrt/internal/alignment"
	"mfasrt/internal/logging"
	"mfasrt/internal/textutil"
)

// Block is one displayed subtitle cue.
type Block struct {
	Index int
	Start float64
	End   float64
	Text  string
	Line  int
	Word  int
}

// Inversion records a block whose start came after its end.
type Inversion struct {
	Index int
	Start float64
	End   float64
}

// Report summarizes the timing adjustments made while segmenting.
type Report struct {
	Blocks   int
	Inverted []Inversion
	Repaired int
}

// Options tunes Segment.
type Options struct {
	Style Style
	// LineStarts holds explicit per-line start times when the transcript came
	// from a timed subtitle file. Lines beyond its length use word timings.
	LineStarts     []float64
	RepairInverted bool
	Logger         *slog.Logger
}

// Segment builds one block per word. spans and timings are index-aligned with
// the transcript words; lines are the source lines the spans point into.
func Segment(lines []string, spans []textutil.WordSpan, timings []alignment.TimedWord, opts Options) ([]Block, Report, error) {
	if len(spans) != len(timings) {
		return nil, Report{}, &alignment.MismatchError{
			Kind:       alignment.ErrCountMismatch,
			WordIndex:  -1,
			TokenIndex: -1,
			Reason:     fmt.Sprintf("%d word timings for %d words", len(timings), len(spans)),
		}
	}
	style := opts.Style
	if style.Highlight == "" || style.Base == "" {
		style = DefaultStyle()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	byLine := make([][]int, len(lines))
	for w, span := range spans {
		if span.Line < 0 || span.Line >= len(lines) {
			return nil, Report{}, fmt.Errorf("word %d points at line %d of %d", w, span.Line, len(lines))
		}
		if span.Start < 0 || span.End > len(lines[span.Line]) || span.Start >= span.End {
			return nil, Report{}, fmt.Errorf("word %d span [%d,%d) outside line %d", w, span.Start, span.End, span.Line)
		}
		byLine[span.Line] = append(byLine[span.Line], w)
	}

	blocks := make([]Block, 0, len(spans))
	for li, line := range lines {
		words := byLine[li]
		n := len(words)
		for p, w := range words {
			hs := 0
			if p > 0 {
				hs = spans[w].Start
			}
			he := len(line)
			if p < n-1 {
				he = spans[words[p+1]].Start
			}

			start := timings[w].Start
			if p == 0 && li < len(opts.LineStarts) {
				start = opts.LineStarts[li]
			}
			end := timings[w].End
			if p < n-1 {
				end = timings[words[p+1]].Start
			}

			blocks = append(blocks, Block{
				Start: start,
				End:   end,
				Text:  style.render(line, hs, he),
				Line:  li,
				Word:  w,
			})
		}
	}

	report := Report{Blocks: len(blocks)}
	for k := range blocks {
		blocks[k].Index = k + 1
		if blocks[k].Start > blocks[k].End {
			report.Inverted = append(report.Inverted, Inversion{Index: k + 1, Start: blocks[k].Start, End: blocks[k].End})
			logging.WarnWithContext(logger, "subtitle block starts after it ends", "inverted_interval",
				logging.Int("block", k+1),
				logging.Float64("start", blocks[k].Start),
				logging.Float64("end", blocks[k].End),
				logging.String(logging.FieldErrorHint, "check the aligner output for out-of-order tokens"),
			)
		}
	}

	if opts.RepairInverted {
		report.Repaired = repairOrder(blocks)
	}
	synchronize(blocks)

	if !opts.RepairInverted {
		for _, b := range blocks {
			if b.Start > b.End {
				logging.WarnWithContext(logger, "subtitle block still inverted after synchronization", "inverted_interval",
					logging.Int("block", b.Index),
					logging.Float64("start", b.Start),
					logging.Float64("end", b.End),
					logging.String(logging.FieldImpact, "player may skip or reorder this cue"),
				)
			}
		}
	}
	return blocks, report, nil
}

// repairOrder clamps each block's start to its predecessor's start so starts
// never decrease, and keeps the final block from ending before it starts.
func repairOrder(blocks []Block) int {
	repaired := 0
	for k := 1; k < len(blocks); k++ {
		if blocks[k].Start < blocks[k-1].Start {
			blocks[k].Start = blocks[k-1].Start
			repaired++
		}
	}
	if n := len(blocks); n > 0 && blocks[n-1].End < blocks[n-1].Start {
		blocks[n-1].End = blocks[n-1].Start
		repaired++
	}
	return repaired
}

// synchronize makes every block end exactly when the next one starts.
func synchronize(blocks []Block) {
	for k := 0; k+1 < len(blocks); k++ {
		blocks[k].End = blocks[k+1].Start
	}
}
