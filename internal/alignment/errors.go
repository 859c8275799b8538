package alignment

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch reports that the token stream could not explain
	// the word stream within the recovery rules.
	ErrStructuralMismatch = errors.New("structural mismatch")
	// ErrCountMismatch reports that resolved timings do not cover every word.
	ErrCountMismatch = errors.New("count mismatch")
)

// MismatchError identifies the word and token where alignment stopped.
type MismatchError struct {
	Kind       error
	Word       string
	WordIndex  int
	Token      string
	TokenIndex int
	Reason     string
}

func (e *MismatchError) Error() string {
	if e == nil {
		return "<nil>"
	}
	kind := e.Kind
	if kind == nil {
		kind = ErrStructuralMismatch
	}
	msg := kind.Error()
	if e.WordIndex >= 0 {
		msg += fmt.Sprintf(" at word %d %q", e.WordIndex, e.Word)
	}
	if e.TokenIndex >= 0 {
		msg += fmt.Sprintf(", token %d %q", e.TokenIndex, e.Token)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *MismatchError) Unwrap() error {
	if e == nil || e.Kind == nil {
		return ErrStructuralMismatch
	}
	return e.Kind
}
