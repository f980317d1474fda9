// Package resolve maps untrusted candidate mod names to catalog entries.
// A chain of lookup strategies is tried in order until one produces an
// entry that passes the compatibility filter; the outcome, whatever it
// is, always lands in a Record.
package resolve

import (
	"context"

	"github.com/modsmith/modsmith-server/internal/catalog"
)

// Reason classifies why a candidate failed to resolve.
type Reason string

// Failure reasons. Empty means the candidate resolved.
const (
	ReasonNone                Reason = ""
	ReasonNotInCatalog        Reason = "not-in-catalog"
	ReasonIncompatibleVersion Reason = "incompatible-version"
	ReasonIncompatibleLoader  Reason = "incompatible-loader"
	ReasonAmbiguous           Reason = "ambiguous-no-confident-match"
	ReasonCatalogUnavailable  Reason = "catalog-unavailable"
)

// Terminal reports whether the reason is a definitive per-candidate
// verdict, as opposed to a transient infrastructure failure.
func (r Reason) Terminal() bool {
	return r != ReasonNone && r != ReasonCatalogUnavailable
}

// Strategy result markers used in Record.Strategy.
const (
	StrategyExhausted = "exhausted" // every strategy ran, nothing accepted
	StrategyLearned   = "learned"   // engine short-circuited from the learning store
)

// Record is the immutable outcome of resolving one candidate.
type Record struct {
	Candidate string         // raw candidate string as supplied
	Key       string         // normalized form used for dedup and learning
	Entry     *catalog.Entry // resolved entry, nil when unresolved
	Strategy  string         // strategy that accepted the entry, or a marker
	Reason    Reason         // failure reason when Entry is nil

	// Confidence is the fuzzy-match score when the fuzzy strategy
	// accepted the entry; 1.0 for identifier lookups.
	Confidence float64

	// TransientFailures counts catalog transport failures that were
	// retried while resolving this candidate, whether or not the
	// resolution ultimately succeeded.
	TransientFailures int
}

// Resolved reports whether the record carries a catalog entry.
func (r *Record) Resolved() bool {
	return r.Entry != nil
}

// Catalog is the client capability the chain consumes.
type Catalog interface {
	LookupProject(ctx context.Context, idOrSlug string) (*catalog.Entry, error)
	Search(ctx context.Context, params catalog.SearchParams) ([]catalog.Entry, error)
}
