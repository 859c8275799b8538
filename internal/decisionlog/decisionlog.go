// Package decisionlog writes the matcher's pairing decisions to a file for
// post-mortem review of a run. Each decision is appended as one line the
// moment it is recorded; Close adds a summary table of the whole run.
package decisionlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mfasrt/internal/alignment"
)

var headers = table.Row{"WORD#", "WORD", "TOKEN#", "TOKEN", "RANGE", "START", "END", "KIND", "STATUS", "REASON"}

// Log appends decisions to its file as they arrive and renders the summary
// table on Close. A process killed mid-run still leaves the per-decision
// lines behind.
type Log struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	decisions []alignment.Decision
	writeErr  error
	closed    bool
}

// Create opens path for writing, truncating any previous log.
func Create(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create decision log directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create decision log: %w", err)
	}
	return &Log{path: path, file: file}, nil
}

// Path returns the file the log is written to.
func (l *Log) Path() string {
	return l.path
}

// Record implements alignment.Recorder.
func (l *Log) Record(d alignment.Decision) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.decisions = append(l.decisions, d)
	if l.writeErr == nil {
		_, l.writeErr = l.file.WriteString(Line(d) + "\n")
	}
}

// Line formats one decision as a single key=value line.
func Line(d alignment.Decision) string {
	return fmt.Sprintf("word=%d %s token=%s %s range=%s start=%s end=%s kind=%s status=%s reason=%s",
		d.WordIndex, strconv.Quote(d.Word),
		indexCell(d.TokenIndex), strconv.Quote(d.Token),
		orDash(rangeCell(d)), orDash(timeCell(d, d.Start)), orDash(timeCell(d, d.End)),
		d.Kind, statusOf(d), strconv.Quote(d.Reason))
}

// Len returns the number of decisions recorded so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.decisions)
}

// Close renders every recorded decision and closes the file. It is safe to
// call more than once.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	writeErr := l.writeErr
	if writeErr == nil {
		_, writeErr = l.file.WriteString("\n" + Render(l.decisions) + "\n")
	}
	closeErr := l.file.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return fmt.Errorf("write decision log: %w", err)
	}
	return nil
}

// Render formats decisions as a plain-text table.
func Render(decisions []alignment.Decision) string {
	tw := table.NewWriter()
	style := table.StyleLight
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	tw.AppendHeader(headers)

	accepted, rejected := 0, 0
	for _, d := range decisions {
		if d.Accepted {
			accepted++
		} else {
			rejected++
		}
		tw.AppendRow(table.Row{
			d.WordIndex,
			d.Word,
			indexCell(d.TokenIndex),
			d.Token,
			rangeCell(d),
			timeCell(d, d.Start),
			timeCell(d, d.End),
			string(d.Kind),
			statusOf(d),
			d.Reason,
		})
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d decisions", len(decisions)), "", "", "", "", "", "",
		fmt.Sprintf("%d/%d", accepted, rejected), ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 6, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 7, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func statusOf(d alignment.Decision) string {
	switch {
	case d.Kind == alignment.KindFailed:
		return "FAILED"
	case d.Accepted:
		return "accepted"
	default:
		return "rejected"
	}
}

func orDash(cell string) string {
	if cell == "" {
		return "-"
	}
	return cell
}

func indexCell(idx int) string {
	if idx < 0 {
		return "-"
	}
	return strconv.Itoa(idx)
}

func rangeCell(d alignment.Decision) string {
	if !d.Resolved() {
		return ""
	}
	if d.First == d.Last {
		return strconv.Itoa(d.First)
	}
	return fmt.Sprintf("%d-%d", d.First, d.Last)
}

func timeCell(d alignment.Decision, value float64) string {
	if !d.Resolved() {
		return ""
	}
	return strconv.FormatFloat(value, 'f', 3, 64)
}
