package language

import (
	"sort"
	"strings"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 primary (3-letter)
	alt3    string   // ISO 639-2 alternate (e.g. "fre" vs "fra")
	display string   // Human-readable name
	words   []string // Full word forms (e.g. "english")
	model   string   // Pretrained dictionary and acoustic model name
}

var languages = []entry{
	{"en", "eng", "", "English", []string{"english"}, "english_us_mfa310"},
	{"fr", "fra", "fre", "French", []string{"french"}, "french_mfa"},
	{"ru", "rus", "", "Russian", []string{"russian"}, "russian_mfa"},
	{"pt", "por", "", "Portuguese", []string{"portuguese"}, "portuguese_mfa"},
	{"es", "spa", "", "Spanish", []string{"spanish"}, "spanish_mfa"},
	{"de", "deu", "ger", "German", []string{"german"}, "german_mfa"},
}

// Index maps built at init time.
var (
	byCode2 map[string]*entry
	byCode3 map[string]*entry
	byWord  map[string]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	return nil
}

// ToISO2 converts any recognized language code or word to ISO 639-1 (2-letter).
// Returns empty string for unrecognized input.
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	return ""
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the uppercased code for unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Model returns the pretrained model name for a language code. An explicit
// model name (anything containing an underscore) is returned unchanged so
// custom models can be selected directly.
func Model(code string) (string, bool) {
	if e := lookup(code); e != nil {
		return e.model, true
	}
	trimmed := strings.TrimSpace(code)
	if strings.Contains(trimmed, "_") {
		return trimmed, true
	}
	return "", false
}

// Supported lists the ISO 639-1 codes with a known model, sorted.
func Supported() []string {
	codes := make([]string, 0, len(languages))
	for _, e := range languages {
		codes = append(codes, e.code2)
	}
	sort.Strings(codes)
	return codes
}
