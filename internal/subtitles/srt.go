package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"mfasrt/internal/fileutil"
	"mfasrt/internal/karaoke"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// StripTags removes markup such as <i> or <font color=...> from cue text.
func StripTags(text string) string {
	return tagPattern.ReplaceAllString(text, "")
}

// ParseTimestamp converts HH:MM:SS,mmm (or HH:MM:SS.mmm) to seconds.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Normalize period to comma (SRT standard uses comma for milliseconds)
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// FormatTimestamp renders seconds as HH:MM:SS,mmm, rounding to the nearest
// millisecond. Negative values clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	msTotal := int(seconds*1000 + 0.5)
	hours := msTotal / 3_600_000
	msTotal %= 3_600_000
	minutes := msTotal / 60_000
	msTotal %= 60_000
	secs := msTotal / 1_000
	millis := msTotal % 1_000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// WriteSRT writes blocks in SRT form.
func WriteSRT(w io.Writer, blocks []karaoke.Block) error {
	bw := bufio.NewWriter(w)
	for _, b := range blocks {
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", b.Index, FormatTimestamp(b.Start), FormatTimestamp(b.End), b.Text); err != nil {
			return fmt.Errorf("write srt: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// WriteFile writes blocks to path atomically so a failed run never leaves a
// truncated SRT behind.
func WriteFile(path string, blocks []karaoke.Block) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteSRT(w, blocks)
	})
}
