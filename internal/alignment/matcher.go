package alignment

import (
	"fmt"
	"log/slog"
	"strings"

	"mfasrt/internal/logging"
	"mfasrt/internal/textutil"
)

// DefaultLookahead is the widest token or word skip attempted on a mismatch.
const DefaultLookahead = 2

// Kind classifies how a word was paired with its tokens.
type Kind string

const (
	// KindExact means the word matched one or more consecutive tokens directly.
	KindExact Kind = "exact"
	// KindTokenSkip means spurious tokens before the match were ignored.
	KindTokenSkip Kind = "token-skip"
	// KindWordSkip means several words share the token range of one match.
	KindWordSkip Kind = "word-skip"
	// KindPlaceholderSkip means a run of placeholders was skipped in bulk.
	KindPlaceholderSkip Kind = "placeholder-skip"
	// KindPlaceholder means the word was paired with an unknown placeholder.
	KindPlaceholder Kind = "placeholder"
	// KindResync means the word matched after a placeholder run was walked.
	KindResync Kind = "resync"
	// KindFailed marks the decision that aborted the run.
	KindFailed Kind = "failed"
)

// Range is the inclusive token span assigned to one word.
type Range struct {
	First int
	Last  int
	Kind  Kind
}

// Resolved reports whether r points at a token span.
func (r Range) Resolved() bool {
	return r.First >= 0 && r.Last >= r.First
}

func unresolved() Range {
	return Range{First: -1, Last: -1}
}

// Alignment is the word to token mapping produced by Align.
type Alignment struct {
	Words  []string
	Tokens []Token
	Ranges []Range
}

// KindCounts tallies resolved words per match kind.
func (a Alignment) KindCounts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, r := range a.Ranges {
		if r.Resolved() {
			counts[r.Kind]++
		}
	}
	return counts
}

// Options tunes Align.
type Options struct {
	Lookahead int
	Recorder  Recorder
	Logger    *slog.Logger
}

// Align maps every normalized word onto a contiguous range of tokens. Skip
// markers are removed first; Alignment.Tokens holds the filtered sequence
// the ranges index into. On error the returned Alignment carries the ranges
// resolved before the failure.
func Align(words []string, tokens []Token, opts Options) (Alignment, error) {
	m := newMatcher(words, DropSkips(tokens), opts)
	al := Alignment{
		Words:  words,
		Tokens: m.tokens,
		Ranges: make([]Range, len(words)),
	}
	for idx := range al.Ranges {
		al.Ranges[idx] = unresolved()
	}

	i, j := 0, 0
	for i < len(words) {
		if j >= len(m.tokens) {
			return al, m.fail(i, j, "tokens exhausted before words")
		}
		block, err := m.resolve(i, j)
		if err != nil {
			return al, err
		}
		nextWord, nextToken := i, j
		for _, a := range block {
			al.Ranges[a.word] = a.rng
			nextWord = max(nextWord, a.word+1)
			nextToken = max(nextToken, a.rng.Last+1)
		}
		i, j = nextWord, nextToken
	}
	return al, nil
}

type matcher struct {
	words     []string
	wordKeys  []string
	tokens    []Token
	tokenKeys []string
	lookahead int
	recorder  Recorder
	logger    *slog.Logger
}

func newMatcher(words []string, tokens []Token, opts Options) *matcher {
	m := &matcher{
		words:     words,
		wordKeys:  make([]string, len(words)),
		tokens:    tokens,
		tokenKeys: make([]string, len(tokens)),
		lookahead: opts.Lookahead,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
	}
	if m.lookahead <= 0 {
		m.lookahead = DefaultLookahead
	}
	if m.recorder == nil {
		m.recorder = nopRecorder{}
	}
	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	for idx, w := range words {
		m.wordKeys[idx] = textutil.AlnumKey(w)
	}
	for idx, t := range tokens {
		if !t.Unknown {
			m.tokenKeys[idx] = textutil.AlnumKey(t.Label)
		}
	}
	return m
}

type assignment struct {
	word int
	rng  Range
}

type matchResult int

const (
	matchFailed matchResult = iota
	matchOK
	matchPlaceholder
)

// tryMatch concatenates token keys from j until they spell word i. On success
// it returns the last token consumed; on matchPlaceholder it returns the index
// of the placeholder that interrupted the accumulation.
func (m *matcher) tryMatch(i, j int) (int, matchResult) {
	if i >= len(m.words) || j >= len(m.tokens) {
		return -1, matchFailed
	}
	target := m.wordKeys[i]
	acc := ""
	for t := j; t < len(m.tokens); t++ {
		if m.tokens[t].Unknown {
			return t, matchPlaceholder
		}
		acc += m.tokenKeys[t]
		if acc == target {
			return t, matchOK
		}
		if !strings.HasPrefix(target, acc) {
			return -1, matchFailed
		}
	}
	return -1, matchFailed
}

func (m *matcher) nextRecognized(j int) int {
	for j < len(m.tokens) && m.tokens[j].Unknown {
		j++
	}
	return j
}

func (m *matcher) tokensLeft(j int) int { return len(m.tokens) - j }

func (m *matcher) wordsLeft(i int) int { return len(m.words) - i }

type state int

const (
	stateMatchingWord state = iota
	stateSkippingPlaceholder
	stateResynchronizing
	stateFailed
	stateDone
)

// machine is the cursor state for resolving one block of words. anchor is
// the first token of a word prefix consumed before a placeholder, or -1.
type machine struct {
	state  state
	word   int
	token  int
	anchor int
	via    Kind
	block  []assignment
	err    error
}

// resolve runs the state machine from (i, j) until a block of words is
// assigned or the run fails.
func (m *matcher) resolve(i, j int) ([]assignment, error) {
	mc := &machine{state: stateMatchingWord, word: i, token: j, anchor: -1, via: KindExact}
	if m.tokens[j].Unknown {
		mc.state = stateSkippingPlaceholder
	}
	for {
		switch mc.state {
		case stateMatchingWord:
			m.matchWord(mc)
		case stateSkippingPlaceholder:
			m.skipPlaceholders(mc)
		case stateResynchronizing:
			m.resynchronize(mc)
		case stateFailed:
			return nil, mc.err
		case stateDone:
			return mc.block, nil
		}
	}
}

func (m *matcher) matchWord(mc *machine) {
	i, j := mc.word, mc.token
	last, res := m.tryMatch(i, j)
	switch res {
	case matchOK:
		m.accept(mc, i, j, last, mc.via, "matched")
		mc.state = stateDone
		return
	case matchPlaceholder:
		m.note(i, j, KindPlaceholder, fmt.Sprintf("placeholder at token %d inside word", last))
		if last > j {
			mc.anchor = j
		}
		mc.token = last
		mc.state = stateSkippingPlaceholder
		return
	}

	for off := 1; off <= m.lookahead; off++ {
		if m.tokenSkip(mc, off) || m.wordSkip(mc, off) {
			mc.state = stateDone
			return
		}
	}
	mc.err = m.fail(i, j, fmt.Sprintf("no match within lookahead %d", m.lookahead))
	mc.state = stateFailed
}

func (m *matcher) tokenSkip(mc *machine, off int) bool {
	i, j := mc.word, mc.token
	k := j + off
	if k >= len(m.tokens) {
		return false
	}
	for s := j; s < k; s++ {
		if m.tokens[s].Unknown {
			return false
		}
	}
	last, res := m.tryMatch(i, k)
	if res != matchOK {
		return false
	}
	m.accept(mc, i, k, last, KindTokenSkip, fmt.Sprintf("skipped %d spurious token(s)", off))
	return true
}

func (m *matcher) wordSkip(mc *machine, off int) bool {
	i, j := mc.word, mc.token
	w := i + off
	if w >= len(m.words) {
		return false
	}
	last, res := m.tryMatch(w, j)
	if res != matchOK {
		return false
	}
	reason := fmt.Sprintf("merged %d word(s) into one token range", off+1)
	for x := i; x <= w; x++ {
		m.accept(mc, x, j, last, KindWordSkip, reason)
	}
	return true
}

func (m *matcher) skipPlaceholders(mc *machine) {
	i, p := mc.word, mc.token
	k := m.nextRecognized(p)
	if k < len(m.tokens) {
		if _, res := m.tryMatch(i, k); res == matchOK {
			if m.tokensLeft(k) >= m.wordsLeft(i) {
				m.note(i, p, KindPlaceholderSkip, fmt.Sprintf("skipped %d placeholder(s)", k-p))
				mc.token, mc.anchor, mc.via = k, -1, KindPlaceholderSkip
				mc.state = stateMatchingWord
				return
			}
			m.note(i, p, KindPlaceholderSkip, fmt.Sprintf("bulk skip refused: %d token(s) left for %d word(s)", m.tokensLeft(k), m.wordsLeft(i)))
		}
	}
	mc.state = stateResynchronizing
}

func (m *matcher) resynchronize(mc *machine) {
	wi, tj := mc.word, mc.token
	for {
		if wi >= len(m.words) {
			mc.err = m.fail(wi-1, tj, "words exhausted before resynchronizing")
			mc.state = stateFailed
			return
		}
		if tj >= len(m.tokens) {
			mc.err = m.fail(wi, tj, "tokens exhausted inside placeholder run")
			mc.state = stateFailed
			return
		}
		if !m.tokens[tj].Unknown {
			mc.word, mc.token, mc.anchor, mc.via = wi, tj, -1, KindResync
			mc.state = stateMatchingWord
			return
		}
		if k := m.nextRecognized(tj); k < len(m.tokens) {
			if _, res := m.tryMatch(wi, k); res == matchOK && m.tokensLeft(k) >= m.wordsLeft(wi) {
				mc.word, mc.token, mc.anchor, mc.via = wi, k, -1, KindResync
				mc.state = stateMatchingWord
				return
			}
		}
		first := tj
		if wi == mc.word && mc.anchor >= 0 {
			first = mc.anchor
		}
		m.accept(mc, wi, first, tj, KindPlaceholder, "paired with placeholder")
		wi++
		tj++
	}
}

func (m *matcher) accept(mc *machine, word, first, last int, kind Kind, reason string) {
	rng := Range{First: first, Last: last, Kind: kind}
	mc.block = append(mc.block, assignment{word: word, rng: rng})
	m.emit(Decision{
		WordIndex:  word,
		Word:       m.words[word],
		TokenIndex: first,
		Token:      m.tokens[first].Raw,
		First:      first,
		Last:       last,
		Start:      m.tokens[first].Start,
		End:        m.tokens[last].End,
		Kind:       kind,
		Accepted:   true,
		Reason:     reason,
	})
}

// note records a transition that does not assign a range.
func (m *matcher) note(word, token int, kind Kind, reason string) {
	m.emit(Decision{
		WordIndex:  word,
		Word:       m.words[word],
		TokenIndex: token,
		Token:      m.tokens[token].Raw,
		First:      -1,
		Last:       -1,
		Kind:       kind,
		Reason:     reason,
	})
}

func (m *matcher) fail(word, token int, reason string) error {
	d := Decision{
		WordIndex:  word,
		TokenIndex: -1,
		First:      -1,
		Last:       -1,
		Kind:       KindFailed,
		Reason:     reason,
	}
	if word >= 0 && word < len(m.words) {
		d.Word = m.words[word]
	}
	if token >= 0 && token < len(m.tokens) {
		d.TokenIndex = token
		d.Token = m.tokens[token].Raw
	}
	m.emit(d)
	return &MismatchError{
		Kind:       ErrStructuralMismatch,
		Word:       d.Word,
		WordIndex:  word,
		Token:      d.Token,
		TokenIndex: d.TokenIndex,
		Reason:     reason,
	}
}

func (m *matcher) emit(d Decision) {
	m.recorder.Record(d)
	result := "rejected"
	if d.Accepted {
		result = "accepted"
	}
	attrs := logging.DecisionAttrs(string(d.Kind), result, d.Reason)
	attrs = append(attrs,
		logging.Int("word_index", d.WordIndex),
		logging.String("word", d.Word),
		logging.Int("token_index", d.TokenIndex),
		logging.String("token", d.Token),
	)
	if d.Resolved() {
		attrs = append(attrs, logging.Float64("start", d.Start), logging.Float64("end", d.End))
	}
	m.logger.Debug("alignment decision", logging.Args(attrs...)...)
}
