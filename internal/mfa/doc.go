// Package mfa wraps the Montreal Forced Aligner: it invokes `mfa align_one`
// for a single audio/transcript pair and decodes the JSON alignment it
// produces into aligner tokens.
//
// Runs share the aligner's temporary directory, so Runner serializes them
// with a file lock. Tests substitute the process with WithCommandRunner.
package mfa
