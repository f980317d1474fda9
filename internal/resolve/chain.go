package resolve

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/compat"
	"github.com/modsmith/modsmith-server/internal/util"
)

// Policy defaults. All of them are tunables, not correctness mechanisms.
const (
	// DefaultMinConfidence gates fuzzy hits: a combined name/popularity
	// score below this is not a believable match.
	DefaultMinConfidence = 0.4

	// DefaultRetryAttempts bounds tries per strategy step on transient
	// catalog failures.
	DefaultRetryAttempts = 3

	// DefaultRetryBackoff is the initial backoff, doubled per retry.
	DefaultRetryBackoff = 250 * time.Millisecond

	// DefaultSearchLimit bounds fuzzy search result length.
	DefaultSearchLimit = 10
)

// Options tune the chain. Zero values select the defaults above.
type Options struct {
	MinConfidence float64
	RetryAttempts int
	RetryBackoff  time.Duration
	SearchLimit   int
}

func (o Options) withDefaults() Options {
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = DefaultRetryAttempts
	}
	if o.RetryBackoff < 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.SearchLimit <= 0 {
		o.SearchLimit = DefaultSearchLimit
	}
	return o
}

// Chain tries an ordered sequence of strategies until one yields an
// entry that passes the compatibility filter. It never fails past its
// boundary: every resolution ends in a Record.
type Chain struct {
	strategies []Strategy
	opts       Options
	logger     *slog.Logger
}

// NewChain builds the standard chain: exact identifier, normalized slug,
// fuzzy title search.
func NewChain(c Catalog, logger *slog.Logger, opts Options) *Chain {
	opts = opts.withDefaults()
	return &Chain{
		strategies: []Strategy{
			NewExactLookup(c),
			NewSlugLookup(c),
			NewFuzzySearch(c, opts.SearchLimit),
		},
		opts:   opts,
		logger: logger,
	}
}

// NewChainWithStrategies builds a chain over an explicit strategy order.
func NewChainWithStrategies(logger *slog.Logger, opts Options, strategies ...Strategy) *Chain {
	return &Chain{
		strategies: strategies,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

// Resolve runs the chain for one candidate under the requested version
// and loader. The first compatible entry in strategy order wins; ties
// within one strategy's results go to the higher download count. When a
// strategy returns entries that all fail the filter, the rejection
// reason is noted and the next strategy still runs; a later strategy
// may surface a compatible alternative spelling.
func (c *Chain) Resolve(ctx context.Context, candidate, version, loader string) Record {
	record := Record{
		Candidate: candidate,
		Key:       util.NormalizeKey(candidate),
	}

	var (
		rejection       Reason
		hadSubThreshold bool
		sawEntries      bool
	)

	for _, strategy := range c.strategies {
		entries, failures, err := c.attemptWithRetry(ctx, strategy, candidate)
		record.TransientFailures += failures
		if err != nil {
			// Transient failures exhausted the retry budget. This is an
			// infrastructure verdict, not a judgment on the candidate.
			c.logger.Warn("catalog unavailable during resolution",
				"candidate", candidate,
				"strategy", strategy.Name(),
				"error", err,
			)
			record.Strategy = strategy.Name()
			record.Reason = ReasonCatalogUnavailable
			return record
		}
		if len(entries) == 0 {
			continue
		}

		ranked := entries
		confidences := map[string]float64{}
		if strategy.Ranked() {
			ranked, confidences, hadSubThreshold = c.rankAndGate(candidate, entries, hadSubThreshold)
		}
		if len(ranked) > 0 {
			sawEntries = true
		}

		for i := range ranked {
			entry := ranked[i]
			if compat.IsCompatible(&entry, version, loader) {
				record.Entry = &entry
				record.Strategy = strategy.Name()
				record.Confidence = 1.0
				if strategy.Ranked() {
					record.Confidence = confidences[entry.ID]
				}
				c.logger.Debug("candidate resolved",
					"candidate", candidate,
					"slug", entry.Slug,
					"strategy", strategy.Name(),
				)
				return record
			}
		}

		// Every plausible entry failed the filter. Note the reason from
		// the best-ranked one, first strategy wins.
		if rejection == ReasonNone && len(ranked) > 0 {
			rejection = rejectionReason(&ranked[0], version, loader)
		}
	}

	record.Strategy = StrategyExhausted
	switch {
	case rejection != ReasonNone:
		record.Reason = rejection
	case hadSubThreshold:
		record.Reason = ReasonAmbiguous
	case sawEntries:
		// Entries existed but produced no verdict; treat as ambiguous.
		record.Reason = ReasonAmbiguous
	default:
		record.Reason = ReasonNotInCatalog
	}

	return record
}

// rankAndGate scores ranked-strategy hits against the candidate, drops
// those below the confidence threshold, and orders the rest by score
// with downloads breaking ties.
func (c *Chain) rankAndGate(candidate string, entries []catalog.Entry, hadSubThreshold bool) ([]catalog.Entry, map[string]float64, bool) {
	confidences := make(map[string]float64, len(entries))
	kept := make([]catalog.Entry, 0, len(entries))
	for i := range entries {
		score := matchScore(candidate, entries[i].Title, entries[i].Downloads)
		if score < c.opts.MinConfidence {
			hadSubThreshold = true
			continue
		}
		confidences[entries[i].ID] = score
		kept = append(kept, entries[i])
	}

	sort.SliceStable(kept, func(i, j int) bool {
		si, sj := confidences[kept[i].ID], confidences[kept[j].ID]
		if si != sj {
			return si > sj
		}
		return kept[i].Downloads > kept[j].Downloads
	})

	return kept, confidences, hadSubThreshold
}

// rejectionReason classifies why an otherwise-plausible entry was
// rejected. Loader mismatches are reported over version mismatches:
// they are the more actionable signal.
func rejectionReason(entry *catalog.Entry, version, loader string) Reason {
	if !compat.LoaderSupported(entry, loader) {
		return ReasonIncompatibleLoader
	}
	return ReasonIncompatibleVersion
}

// attemptWithRetry runs one strategy with bounded retries and doubling
// backoff on transient catalog failures. Clean misses are not retried.
func (c *Chain) attemptWithRetry(ctx context.Context, strategy Strategy, candidate string) (entries []catalog.Entry, failures int, err error) {
	backoff := c.opts.RetryBackoff
	for attempt := 1; ; attempt++ {
		entries, err = strategy.Attempt(ctx, candidate)
		if err == nil {
			return entries, failures, nil
		}
		if !catalog.IsTransient(err) {
			// Strategies map clean negatives to empty results, so a
			// non-transient error here is a malformed request; treat it
			// as a miss rather than failing the candidate.
			return nil, failures, nil
		}

		failures++
		if attempt >= c.opts.RetryAttempts || ctx.Err() != nil {
			return nil, failures, err
		}

		c.logger.Debug("transient catalog failure, retrying",
			"candidate", candidate,
			"strategy", strategy.Name(),
			"attempt", attempt,
			"backoff", backoff,
		)

		if backoff > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, failures, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
		}
	}
}
