package textutil

import (
	"math"
)

// minKeyRunes drops single-character keys (articles, elided pronouns) that
// would otherwise dominate the overlap score.
const minKeyRunes = 2

// Fingerprint represents a term-frequency vector for vocabulary comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from a sequence of words or labels.
// Placeholders and keys shorter than two characters are ignored. Returns nil
// if nothing usable remains.
func NewFingerprint(words []string) *Fingerprint {
	counts := make(map[string]float64, len(words))
	for _, word := range words {
		if IsPlaceholder(word) {
			continue
		}
		key := AlnumKey(word)
		if len([]rune(key)) < minKeyRunes {
			continue
		}
		counts[key]++
	}
	if len(counts) == 0 {
		return nil
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{
		tokens: counts,
		norm:   math.Sqrt(norm),
	}
}

// TokenCount returns the number of unique keys in the fingerprint.
func (f *Fingerprint) TokenCount() int {
	if f == nil {
		return 0
	}
	return len(f.tokens)
}

// VocabularyOverlap scores how much of the transcript vocabulary the aligner
// recognized, as the cosine similarity of the two fingerprints.
func VocabularyOverlap(words, labels []string) float64 {
	return CosineSimilarity(NewFingerprint(words), NewFingerprint(labels))
}

// CosineSimilarity computes the cosine similarity between two fingerprints.
// Returns 0 if either fingerprint is nil or has zero norm.
func CosineSimilarity(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for key, count := range a.tokens {
		if other, ok := b.tokens[key]; ok {
			dot += count * other
		}
	}
	return dot / (a.norm * b.norm)
}
