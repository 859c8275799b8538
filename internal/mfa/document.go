package mfa

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"mfasrt/internal/alignment"
	"mfasrt/internal/services"
)

// Entry is one interval of an aligner tier.
type Entry struct {
	Start float64
	End   float64
	Label string
}

// UnmarshalJSON decodes the aligner's [start, end, label] array form.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("entry must be an array: %w", err)
	}
	if len(raw) != 3 {
		return fmt.Errorf("entry must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Start); err != nil {
		return fmt.Errorf("entry start: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.End); err != nil {
		return fmt.Errorf("entry end: %w", err)
	}
	if err := json.Unmarshal(raw[2], &e.Label); err != nil {
		return fmt.Errorf("entry label: %w", err)
	}
	return nil
}

// MarshalJSON encodes the entry back into the array form.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Start, e.End, e.Label})
}

// Document holds the tiers of one aligner output file.
type Document struct {
	Start  float64
	End    float64
	Words  []Entry
	Phones []Entry
}

type tier struct {
	Type    string  `json:"type"`
	Entries []Entry `json:"entries"`
}

type payload struct {
	Start float64          `json:"start"`
	End   float64          `json:"end"`
	Tiers map[string]*tier `json:"tiers"`
}

// ParseJSON decodes aligner JSON output. A missing words tier or a negative
// start time is reported as a validation error.
func ParseJSON(r io.Reader) (Document, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Document{}, services.Wrap(services.ErrValidation, "mfa", "parse json", "malformed aligner output", err)
	}
	words, ok := p.Tiers["words"]
	if !ok || words == nil {
		return Document{}, services.Wrap(services.ErrValidation, "mfa", "parse json", "words tier missing", nil)
	}
	doc := Document{Start: p.Start, End: p.End, Words: words.Entries}
	if phones := p.Tiers["phones"]; phones != nil {
		doc.Phones = phones.Entries
	}
	for idx, entry := range doc.Words {
		if entry.Start < 0 {
			msg := fmt.Sprintf("word entry %d has negative start %.3f", idx, entry.Start)
			return Document{}, services.Wrap(services.ErrValidation, "mfa", "parse json", msg, nil)
		}
	}
	return doc, nil
}

// LoadFile reads and decodes an aligner JSON file.
func LoadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Document{}, services.Wrap(services.ErrNotFound, "mfa", "open json", path, err)
		}
		return Document{}, fmt.Errorf("open aligner output: %w", err)
	}
	defer f.Close()
	doc, err := ParseJSON(f)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Triples returns the word tier as upstream triples in occurrence order.
func (d Document) Triples() []alignment.Triple {
	out := make([]alignment.Triple, 0, len(d.Words))
	for _, w := range d.Words {
		out = append(out, alignment.Triple{Start: w.Start, End: w.End, Label: w.Label})
	}
	return out
}

// Tokens converts the word tier into aligner tokens, skip markers included.
func (d Document) Tokens() []alignment.Token {
	return alignment.NewTokens(d.Triples())
}

// LoadTokens reads an aligner JSON file and returns its word tokens.
func LoadTokens(path string) ([]alignment.Token, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return doc.Tokens(), nil
}
