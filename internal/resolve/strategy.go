package resolve

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/util"
)

// Strategy is one way of asking the catalog about a candidate.
// Attempt returns zero or more entries; zero entries is a clean miss,
// an error is a catalog failure. Ranked strategies return a relevance
// list that still needs a confidence gate; identifier strategies return
// at most one authoritative entry.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, candidate string) ([]catalog.Entry, error)
	Ranked() bool
}

// identifierRe matches strings that can be tried directly as catalog
// identifiers. Anything else would be rejected by the API before lookup.
var identifierRe = regexp.MustCompile(`^[\w-]{1,64}$`)

// exactLookup treats the candidate as a literal catalog identifier.
type exactLookup struct {
	catalog Catalog
}

// NewExactLookup creates the exact-identifier strategy.
func NewExactLookup(c Catalog) Strategy {
	return &exactLookup{catalog: c}
}

func (s *exactLookup) Name() string { return "exact-identifier" }
func (s *exactLookup) Ranked() bool { return false }

func (s *exactLookup) Attempt(ctx context.Context, candidate string) ([]catalog.Entry, error) {
	id := strings.TrimSpace(candidate)
	if !identifierRe.MatchString(id) {
		return nil, nil
	}
	entries, err := lookupOne(ctx, s.catalog, id)
	if err != nil || len(entries) > 0 {
		return entries, err
	}
	// Slugs are stored lowercase; "Create" should still hit "create".
	if lower := strings.ToLower(id); lower != id {
		return lookupOne(ctx, s.catalog, lower)
	}
	return nil, nil
}

// slugLookup retries the exact lookup with the slugified candidate,
// catching "Applied Energistics 2" vs "applied-energistics-2".
type slugLookup struct {
	catalog Catalog
}

// NewSlugLookup creates the slug-normalization strategy.
func NewSlugLookup(c Catalog) Strategy {
	return &slugLookup{catalog: c}
}

func (s *slugLookup) Name() string { return "normalized-slug" }
func (s *slugLookup) Ranked() bool { return false }

func (s *slugLookup) Attempt(ctx context.Context, candidate string) ([]catalog.Entry, error) {
	slug := util.Slugify(candidate)
	if slug == "" || slug == strings.ToLower(strings.TrimSpace(candidate)) {
		// Identical to what the exact strategy already tried.
		return nil, nil
	}
	return lookupOne(ctx, s.catalog, slug)
}

// lookupOne wraps a single-identifier lookup, mapping the API's clean
// negatives to an empty result.
func lookupOne(ctx context.Context, c Catalog, id string) ([]catalog.Entry, error) {
	entry, err := c.LookupProject(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrBadRequest) {
			return nil, nil
		}
		return nil, err
	}
	return []catalog.Entry{*entry}, nil
}

// fuzzySearch queries the catalog's free-text search with the raw
// candidate and returns its relevance-ranked hits.
type fuzzySearch struct {
	catalog Catalog
	limit   int
}

// NewFuzzySearch creates the fuzzy-title strategy.
func NewFuzzySearch(c Catalog, limit int) Strategy {
	return &fuzzySearch{catalog: c, limit: limit}
}

func (s *fuzzySearch) Name() string { return "fuzzy-title" }
func (s *fuzzySearch) Ranked() bool { return true }

func (s *fuzzySearch) Attempt(ctx context.Context, candidate string) ([]catalog.Entry, error) {
	query := strings.TrimSpace(candidate)
	if query == "" {
		return nil, nil
	}
	entries, err := s.catalog.Search(ctx, catalog.SearchParams{Query: query, Limit: s.limit})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrBadRequest) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}
