package resolve

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modsmith/modsmith-server/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeCatalog is an in-memory Catalog for chain tests.
type fakeCatalog struct {
	projects map[string]catalog.Entry   // keyed by slug
	searches map[string][]catalog.Entry // keyed by query

	// transientBudget makes the first N calls fail with ErrServer.
	transientBudget int

	lookupCalls []string
	searchCalls []string
}

func (f *fakeCatalog) LookupProject(_ context.Context, idOrSlug string) (*catalog.Entry, error) {
	f.lookupCalls = append(f.lookupCalls, idOrSlug)
	if f.transientBudget > 0 {
		f.transientBudget--
		return nil, catalog.ErrServer
	}
	if e, ok := f.projects[idOrSlug]; ok {
		return &e, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) Search(_ context.Context, params catalog.SearchParams) ([]catalog.Entry, error) {
	f.searchCalls = append(f.searchCalls, params.Query)
	if f.transientBudget > 0 {
		f.transientBudget--
		return nil, catalog.ErrServer
	}
	for q, hits := range f.searches {
		if strings.EqualFold(q, params.Query) {
			return hits, nil
		}
	}
	return nil, nil
}

func newChain(f *fakeCatalog, opts Options) *Chain {
	opts.RetryBackoff = 0 // tests never sleep
	return NewChain(f, testLogger(), opts)
}

func createEntry() catalog.Entry {
	return catalog.Entry{
		ID:           "LNytGWDc",
		Slug:         "create",
		Title:        "Create",
		GameVersions: []string{"1.19.2", "1.20.1"},
		Loaders:      []string{"fabric", "forge"},
		Downloads:    24_000_000,
	}
}

func TestResolve_ExactIdentifier(t *testing.T) {
	f := &fakeCatalog{projects: map[string]catalog.Entry{"create": createEntry()}}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "Create", "1.20.1", "fabric")

	require.True(t, rec.Resolved())
	assert.Equal(t, "create", rec.Entry.Slug)
	assert.Equal(t, "exact-identifier", rec.Strategy)
	assert.Equal(t, ReasonNone, rec.Reason)
	assert.Equal(t, 1.0, rec.Confidence)
	assert.Empty(t, f.searchCalls, "no fuzzy search for an exact hit")
}

func TestResolve_SlugNormalization(t *testing.T) {
	ae2 := catalog.Entry{
		ID:           "XxWD5pD3",
		Slug:         "applied-energistics-2",
		Title:        "Applied Energistics 2",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"forge", "fabric"},
		Downloads:    15_000_000,
	}
	f := &fakeCatalog{projects: map[string]catalog.Entry{"applied-energistics-2": ae2}}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "Applied Energistics 2", "1.20.1", "forge")

	require.True(t, rec.Resolved())
	assert.Equal(t, "normalized-slug", rec.Strategy)
	assert.Equal(t, "applied-energistics-2", rec.Entry.Slug)
}

func TestResolve_FuzzyTitle(t *testing.T) {
	sodium := catalog.Entry{
		ID:           "AANobbMI",
		Slug:         "sodium",
		Title:        "Sodium",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"fabric"},
		Downloads:    40_000_000,
	}
	f := &fakeCatalog{
		projects: map[string]catalog.Entry{},
		searches: map[string][]catalog.Entry{"Sodium Renderer": {sodium}},
	}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "Sodium Renderer", "1.20.1", "fabric")

	require.True(t, rec.Resolved())
	assert.Equal(t, "fuzzy-title", rec.Strategy)
	assert.Equal(t, "sodium", rec.Entry.Slug)
	assert.Greater(t, rec.Confidence, 0.4)
}

func TestResolve_NotInCatalog(t *testing.T) {
	f := &fakeCatalog{projects: map[string]catalog.Entry{}, searches: map[string][]catalog.Entry{}}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "OutdatedMod", "1.20.1", "fabric")

	assert.False(t, rec.Resolved())
	assert.Equal(t, StrategyExhausted, rec.Strategy)
	assert.Equal(t, ReasonNotInCatalog, rec.Reason)
}

func TestResolve_IncompatibleLoader(t *testing.T) {
	sodium := catalog.Entry{
		ID:           "AANobbMI",
		Slug:         "sodium",
		Title:        "Sodium",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"fabric"},
		Downloads:    40_000_000,
	}
	f := &fakeCatalog{
		projects: map[string]catalog.Entry{"sodium": sodium},
		searches: map[string][]catalog.Entry{"Sodium": {sodium}},
	}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "Sodium", "1.20.1", "forge")

	assert.False(t, rec.Resolved())
	assert.Equal(t, ReasonIncompatibleLoader, rec.Reason)
}

func TestResolve_IncompatibleVersion(t *testing.T) {
	e := createEntry() // supports 1.19.2, 1.20.1
	f := &fakeCatalog{projects: map[string]catalog.Entry{"create": e}}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "create", "1.21", "fabric")

	assert.False(t, rec.Resolved())
	assert.Equal(t, ReasonIncompatibleVersion, rec.Reason)
}

func TestResolve_LaterStrategyRescuesRejection(t *testing.T) {
	// Exact hit fails the filter, but fuzzy search surfaces a port that
	// passes. The chain must keep going instead of stopping at the
	// first rejection.
	forgeOnly := catalog.Entry{
		ID:           "orig",
		Slug:         "waystones",
		Title:        "Waystones",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"forge"},
		Downloads:    10_000_000,
	}
	fabricPort := catalog.Entry{
		ID:           "port",
		Slug:         "waystones-fabric",
		Title:        "Waystones Fabric",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"fabric"},
		Downloads:    2_000_000,
	}
	f := &fakeCatalog{
		projects: map[string]catalog.Entry{"waystones": forgeOnly},
		searches: map[string][]catalog.Entry{"waystones": {forgeOnly, fabricPort}},
	}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "waystones", "1.20.1", "fabric")

	require.True(t, rec.Resolved())
	assert.Equal(t, "fuzzy-title", rec.Strategy)
	assert.Equal(t, "waystones-fabric", rec.Entry.Slug)
}

func TestResolve_AmbiguousBelowThreshold(t *testing.T) {
	unrelated := catalog.Entry{
		ID:           "zzz",
		Slug:         "completely-different",
		Title:        "Completely Different Project",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"fabric"},
		Downloads:    10,
	}
	f := &fakeCatalog{
		projects: map[string]catalog.Entry{},
		searches: map[string][]catalog.Entry{"Mystical Whatever": {unrelated}},
	}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "Mystical Whatever", "1.20.1", "fabric")

	assert.False(t, rec.Resolved())
	assert.Equal(t, ReasonAmbiguous, rec.Reason)
}

func TestResolve_PopularityTieBreak(t *testing.T) {
	small := catalog.Entry{
		ID:           "small",
		Slug:         "iron-chests-lite",
		Title:        "Iron Chests",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"forge"},
		Downloads:    1_000,
	}
	big := catalog.Entry{
		ID:           "big",
		Slug:         "iron-chests",
		Title:        "Iron Chests",
		GameVersions: []string{"1.20.1"},
		Loaders:      []string{"forge"},
		Downloads:    5_000_000,
	}
	f := &fakeCatalog{
		projects: map[string]catalog.Entry{},
		// Server relevance order puts the small one first; identical
		// titles score identically, so downloads must decide.
		searches: map[string][]catalog.Entry{"Iron Chests": {small, big}},
	}
	chain := newChain(f, Options{})

	rec := chain.Resolve(context.Background(), "Iron Chests", "1.20.1", "forge")

	require.True(t, rec.Resolved())
	assert.Equal(t, "iron-chests", rec.Entry.Slug)
}

func TestResolve_TransientThenSuccess(t *testing.T) {
	// Two transport failures, success on the third attempt: resolved,
	// with the failures counted but no catalog-unavailable verdict.
	f := &fakeCatalog{
		projects:        map[string]catalog.Entry{"create": createEntry()},
		transientBudget: 2,
	}
	chain := newChain(f, Options{RetryAttempts: 3})

	rec := chain.Resolve(context.Background(), "create", "1.20.1", "fabric")

	require.True(t, rec.Resolved())
	assert.Equal(t, 2, rec.TransientFailures)
	assert.Equal(t, ReasonNone, rec.Reason)
}

func TestResolve_CatalogUnavailable(t *testing.T) {
	f := &fakeCatalog{
		projects:        map[string]catalog.Entry{"create": createEntry()},
		transientBudget: 100,
	}
	chain := newChain(f, Options{RetryAttempts: 3})

	rec := chain.Resolve(context.Background(), "create", "1.20.1", "fabric")

	assert.False(t, rec.Resolved())
	assert.Equal(t, ReasonCatalogUnavailable, rec.Reason)
	assert.Equal(t, 3, rec.TransientFailures)
}

func TestResolve_NeverPanicsOnWeirdInput(t *testing.T) {
	f := &fakeCatalog{projects: map[string]catalog.Entry{}, searches: map[string][]catalog.Entry{}}
	chain := newChain(f, Options{})

	for _, candidate := range []string{"", "   ", "!!!", strings.Repeat("x", 300), "emoji 🔥 mod"} {
		rec := chain.Resolve(context.Background(), candidate, "1.20.1", "fabric")
		assert.False(t, rec.Resolved())
		assert.NotEqual(t, ReasonNone, rec.Reason, "candidate %q must carry a reason", candidate)
	}
}

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		title     string
		downloads int
		atLeast   float64
		below     float64
	}{
		{"exact name maxes similarity", "Sodium", "Sodium", 1_000_000, 1.0, 1.01},
		{"containment", "Sodium", "Sodium Extra", 0, 0.64, 0.8},
		{"word overlap", "Iron Chests Restocked", "Chests of Iron", 0, 0.3, 0.45},
		{"unrelated", "Botania", "Storage Drawers", 0, 0, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchScore(tt.candidate, tt.title, tt.downloads)
			assert.GreaterOrEqual(t, got, tt.atLeast)
			assert.Less(t, got, tt.below)
		})
	}
}
