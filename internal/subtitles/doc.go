// Package subtitles reads transcripts and writes karaoke SRT files.
//
// Transcripts come either as plain text (one line per non-blank line) or as
// an SRT file, in which case every cue becomes one line and its start time is
// kept so the first word of the line can reuse it. Output is standard SRT with
// HH:MM:SS,mmm timestamps and the font markup produced by the karaoke package.
package subtitles
