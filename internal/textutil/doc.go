// Package textutil canonicalizes transcript words and aligner labels so the
// matcher can compare them.
//
// The primary use cases are:
//   - Normalizing raw aligner labels and transcript words (NormalizeLabel)
//   - Splitting transcript lines into word tokens with byte spans (TokenizeLines)
//   - Reducing words to their alphanumeric comparison key (AlnumKey)
//   - Estimating vocabulary overlap between a transcript and aligner output
//
// Placeholder labels emitted by the aligner ("<unk>", "<eps>") pass through
// normalization untouched so callers can recognize them after the fact.
package textutil
