// Package alignment maps transcript words onto forced-aligner tokens and
// resolves the resulting token ranges into word timings.
//
// The matcher walks both sequences once with a word cursor and a token
// cursor. Split words are rebuilt by concatenating token labels, spurious
// tokens and merged words are absorbed with a bounded lookahead, and runs of
// unknown placeholders are skipped or resynchronized. Anything the lookahead
// cannot explain stops the walk immediately with a *MismatchError. The
// returned Alignment then holds only the ranges resolved before the failure
// and must not be passed on to Resolve.
//
// Every pairing decision is offered to an optional Recorder before the
// matcher returns, so failed runs remain diagnosable.
package alignment
