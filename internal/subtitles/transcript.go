package subtitles

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mfasrt/internal/services"
	"mfasrt/internal/textutil"
)

// Transcript is the text side of an alignment run.
type Transcript struct {
	Path  string
	Lines []string
	// LineStarts is parallel to Lines when the transcript was a timed
	// subtitle file, and nil otherwise.
	LineStarts []float64
}

// Timed reports whether the transcript carries per-line start times.
func (t Transcript) Timed() bool {
	return t.LineStarts != nil
}

// LoadTranscript reads a .srt file as timed cues and anything else as plain
// text. Malformed or empty input is reported as services.ErrValidation.
func LoadTranscript(path string) (Transcript, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Transcript{}, services.Wrap(services.ErrNotFound, "transcript", "open", "Transcript not found", err)
		}
		return Transcript{}, fmt.Errorf("open transcript: %w", err)
	}
	defer file.Close()

	var tr Transcript
	if strings.EqualFold(filepath.Ext(path), ".srt") {
		tr, err = ParseSRT(file)
	} else {
		tr, err = ParseText(file)
	}
	if err != nil {
		return Transcript{}, err
	}
	tr.Path = path
	return tr, nil
}

// ParseText keeps every non-blank line with trailing whitespace removed.
func ParseText(r io.Reader) (Transcript, error) {
	content, err := readContent(r)
	if err != nil {
		return Transcript{}, err
	}
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	if len(lines) == 0 {
		return Transcript{}, services.Wrap(services.ErrValidation, "transcript", "parse text", "Transcript contains no text", nil)
	}
	return Transcript{Lines: textutil.ComposeLines(lines)}, nil
}

// ParseSRT turns every well-formed cue into one line. A cue needs an index,
// a timing line and at least one text line; its text lines are joined with
// spaces and stripped of markup.
func ParseSRT(r io.Reader) (Transcript, error) {
	content, err := readContent(r)
	if err != nil {
		return Transcript{}, err
	}
	content = strings.TrimSpace(content)

	var lines []string
	starts := []float64{}
	for _, block := range strings.Split(content, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		rows := strings.Split(block, "\n")
		if len(rows) < 3 {
			continue
		}
		var index int
		if _, err := fmt.Sscanf(strings.TrimSpace(rows[0]), "%d", &index); err != nil {
			continue
		}
		startText, _, ok := strings.Cut(rows[1], "-->")
		if !ok {
			continue
		}
		start, err := ParseTimestamp(startText)
		if err != nil {
			return Transcript{}, services.Wrap(services.ErrValidation, "transcript", "parse srt",
				fmt.Sprintf("Cue %d has an invalid start time", index), err)
		}

		text := make([]string, 0, len(rows)-2)
		for _, row := range rows[2:] {
			text = append(text, strings.TrimSpace(row))
		}
		lines = append(lines, StripTags(strings.Join(text, " ")))
		starts = append(starts, start)
	}
	if len(lines) == 0 {
		return Transcript{}, services.Wrap(services.ErrValidation, "transcript", "parse srt", "No subtitle cues found", nil)
	}
	return Transcript{Lines: textutil.ComposeLines(lines), LineStarts: starts}, nil
}

func readContent(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	content := strings.TrimPrefix(string(data), "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return content, nil
}
