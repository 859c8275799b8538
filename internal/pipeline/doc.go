// Package pipeline sequences a complete karaoke subtitle run: load the
// transcript, optionally invoke the forced aligner, match transcript words
// to aligner tokens, segment the result into highlighted cues and write the
// SRT file.
//
// Every run gets a UUID that travels in the context for log correlation and
// is persisted to the run history, whether the run succeeds or fails.
package pipeline
