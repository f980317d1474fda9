package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/validate"
)

func resolved(candidate string) resolve.Record {
	return resolve.Record{
		Candidate: candidate,
		Key:       candidate,
		Entry:     &catalog.Entry{ID: candidate, Slug: candidate},
		Strategy:  "exact-identifier",
	}
}

func unresolved(candidate string, reason resolve.Reason) resolve.Record {
	return resolve.Record{
		Candidate: candidate,
		Key:       candidate,
		Strategy:  resolve.StrategyExhausted,
		Reason:    reason,
	}
}

func TestSummarize(t *testing.T) {
	result := validate.Result{
		Records: []resolve.Record{
			resolved("sodium"),
			resolved("lithium"),
			unresolved("outdatedmod", resolve.ReasonNotInCatalog),
			unresolved("waystones", resolve.ReasonIncompatibleLoader),
		},
	}

	summary := Summarize(result)

	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 2, summary.Resolved)
	assert.Equal(t, 2, summary.Unresolved)
	assert.Equal(t, 0.5, summary.SuccessRate)
	assert.False(t, summary.NoInput)
	assert.Equal(t, map[resolve.Reason]int{
		resolve.ReasonNotInCatalog:       1,
		resolve.ReasonIncompatibleLoader: 1,
	}, summary.ByReason)
}

func TestSummarize_NoInput(t *testing.T) {
	summary := Summarize(validate.Result{})

	assert.True(t, summary.NoInput)
	assert.Zero(t, summary.SuccessRate)
	assert.Zero(t, summary.Attempted)
	assert.Nil(t, summary.ByReason)
}

func TestSummarize_FalseSuggestions(t *testing.T) {
	result := validate.Result{
		Records: []resolve.Record{
			unresolved("Imaginary Mod", resolve.ReasonNotInCatalog),
			unresolved("Imaginary Mod", resolve.ReasonNotInCatalog),
			unresolved("waystones", resolve.ReasonIncompatibleVersion),
		},
	}

	summary := Summarize(result)

	assert.Equal(t, []string{"Imaginary Mod"}, summary.FalseSuggestions,
		"invented names listed once, compatibility failures excluded")
}

func TestSummarize_TransientTally(t *testing.T) {
	first := resolved("sodium")
	first.TransientFailures = 2
	second := unresolved("outdatedmod", resolve.ReasonCatalogUnavailable)
	second.TransientFailures = 3

	summary := Summarize(validate.Result{Records: []resolve.Record{first, second}})

	assert.Equal(t, 5, summary.TransientFailures)
}

func TestSummarize_Cancelled(t *testing.T) {
	result := validate.Result{
		Records:   []resolve.Record{resolved("sodium")},
		Cancelled: true,
	}

	summary := Summarize(result)

	assert.True(t, summary.Cancelled)
	assert.Equal(t, 1.0, summary.SuccessRate)
}
