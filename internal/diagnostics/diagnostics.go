// Package diagnostics summarizes validation results. Pure functions of
// their input, no I/O.
package diagnostics

import (
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/validate"
)

// Summary aggregates one validation batch.
type Summary struct {
	Attempted  int                    `json:"attempted"`
	Resolved   int                    `json:"resolved"`
	Unresolved int                    `json:"unresolved"`
	ByReason   map[resolve.Reason]int `json:"by_reason,omitempty"`

	// SuccessRate is Resolved/Attempted. Zero attempts give rate 0
	// with NoInput set instead of a division by zero.
	SuccessRate float64 `json:"success_rate"`
	NoInput     bool    `json:"no_input,omitempty"`

	// FalseSuggestions lists distinct candidates that resolved to
	// nothing in the catalog at all: names the generator invented.
	FalseSuggestions []string `json:"false_suggestions,omitempty"`

	// TransientFailures tallies retried catalog transport failures
	// across the whole batch.
	TransientFailures int `json:"transient_failures"`

	Cancelled bool `json:"cancelled,omitempty"`
}

// Summarize reduces a validation result to counts and groupings. Every
// input record counts once, including deduplicated repeats.
func Summarize(result validate.Result) Summary {
	summary := Summary{
		Attempted: len(result.Records),
		Cancelled: result.Cancelled,
	}

	seenFalse := make(map[string]bool)
	for _, record := range result.Records {
		summary.TransientFailures += record.TransientFailures

		if record.Resolved() {
			summary.Resolved++
			continue
		}

		summary.Unresolved++
		if summary.ByReason == nil {
			summary.ByReason = make(map[resolve.Reason]int)
		}
		summary.ByReason[record.Reason]++

		if record.Reason == resolve.ReasonNotInCatalog && !seenFalse[record.Key] {
			seenFalse[record.Key] = true
			summary.FalseSuggestions = append(summary.FalseSuggestions, record.Candidate)
		}
	}

	if summary.Attempted == 0 {
		summary.NoInput = true
		return summary
	}
	summary.SuccessRate = float64(summary.Resolved) / float64(summary.Attempted)
	return summary
}
