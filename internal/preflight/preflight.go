package preflight

import (
	"context"
	"fmt"
	"strings"

	"mfasrt/internal/config"
	"mfasrt/internal/deps"
	"mfasrt/internal/language"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks needed before aligning audio in the given
// language. An empty language skips the dictionary and model checks.
func RunAll(ctx context.Context, cfg *config.Config, lang string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Work directory (always checked)
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))

	// Log directory (when configured)
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	// History database (when configured)
	if cfg.Paths.HistoryDB != "" {
		results = append(results, CheckParentAccess("History database", cfg.Paths.HistoryDB))
	}

	requirements := []deps.Requirement{{
		Name:        "MFA",
		Command:     cfg.MFA.Binary,
		Description: "Required for forced alignment",
	}}
	if strings.TrimSpace(lang) != "" {
		model, ok := language.Model(lang)
		if !ok {
			results = append(results, Result{
				Name:   "Language",
				Detail: fmt.Sprintf("unsupported language %q (supported: %s)", lang, strings.Join(language.Supported(), ", ")),
			})
		} else {
			requirements = append(requirements,
				deps.Requirement{
					Name:        "Pronunciation dictionary",
					File:        cfg.DictionaryPath(model),
					Description: "Required for " + model,
				},
				deps.Requirement{
					Name:        "Acoustic model",
					File:        cfg.AcousticModelPath(model),
					Description: "Required for " + model,
				},
			)
		}
	}
	depResults := CheckDependencies(requirements)
	results = append(results, depResults...)

	// Version probe only when the binary resolved
	if len(depResults) > 0 && depResults[0].Passed {
		results = append(results, CheckAlignerVersion(ctx, depResults[0].Detail))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// Summary joins failed results into a single line for error messages.
func Summary(results []Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range Failed(results) {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return strings.Join(parts, "; ")
}
