// Package validate runs candidate batches through the resolution chain
// and the learning store, producing one ordered record per input
// candidate plus the deduplicated set of resolved catalog entries.
package validate

import (
	"context"
	"log/slog"
	"time"

	"github.com/modsmith/modsmith-server/internal/catalog"
	"github.com/modsmith/modsmith-server/internal/learning"
	"github.com/modsmith/modsmith-server/internal/ratelimit"
	"github.com/modsmith/modsmith-server/internal/resolve"
	"github.com/modsmith/modsmith-server/internal/util"
)

// DefaultPacing is the minimum spacing between live catalog resolutions
// within one batch. Deduplicated repeats and learning-store skips do not
// touch the catalog and are not paced.
const DefaultPacing = 200 * time.Millisecond

// Resolver resolves a single candidate. Satisfied by *resolve.Chain.
type Resolver interface {
	Resolve(ctx context.Context, candidate, version, loader string) resolve.Record
}

// History is the learning-store capability the engine consumes.
// Satisfied by *learning.Store.
type History interface {
	Lookup(ctx context.Context, candidate string) (*learning.Record, error)
	RecordOutcome(ctx context.Context, candidate string, found bool, reason string) error
	ShouldSkip(rec *learning.Record) bool
}

// Result is the outcome of validating one candidate batch.
type Result struct {
	Version string
	Loader  string

	// Records mirror the input candidate sequence in length and order,
	// except under cancellation, where the tail is missing and
	// Cancelled is set.
	Records []resolve.Record

	// Resolved holds each distinct resolved entry once, in the order
	// of first resolution. This is the stable identifier list handed
	// to downstream consumers.
	Resolved []catalog.Entry

	// Cancelled marks a partial result: the batch was stopped between
	// candidates by context cancellation.
	Cancelled bool
}

// Options tune the engine.
type Options struct {
	// Pacer spaces live catalog resolutions. Nil selects a
	// DefaultPacing pacer; tests pass a zero-interval pacer.
	Pacer *ratelimit.Pacer
}

// Engine validates candidate batches sequentially.
type Engine struct {
	resolver Resolver
	history  History
	pacer    *ratelimit.Pacer
	logger   *slog.Logger
}

// NewEngine builds a validation engine. history may be nil, in which
// case no learning lookups or writes happen.
func NewEngine(resolver Resolver, history History, logger *slog.Logger, opts Options) *Engine {
	pacer := opts.Pacer
	if pacer == nil {
		pacer = ratelimit.NewPacer(DefaultPacing, 1)
	}
	return &Engine{
		resolver: resolver,
		history:  history,
		pacer:    pacer,
		logger:   logger,
	}
}

// Validate processes candidates in input order. Candidates sharing a
// normalized key are resolved once and every occurrence reports the
// shared outcome. Cancellation is honored between candidates only: a
// learning write in flight always completes, and the partial result is
// returned with Cancelled set.
func (e *Engine) Validate(ctx context.Context, candidates []string, version, loader string) Result {
	result := Result{
		Version: version,
		Loader:  loader,
		Records: make([]resolve.Record, 0, len(candidates)),
	}

	outcomes := make(map[string]resolve.Record, len(candidates))
	seenEntries := make(map[string]bool)

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			result.Cancelled = true
			e.logger.Info("validation cancelled",
				"processed", len(result.Records),
				"total", len(candidates),
			)
			return result
		}

		key := util.NormalizeKey(candidate)
		if outcome, ok := outcomes[key]; ok {
			// Same mod under a different spelling: share the outcome,
			// keep this occurrence's raw string.
			outcome.Candidate = candidate
			result.Records = append(result.Records, outcome)
			continue
		}

		record, cancelled := e.resolveOne(ctx, candidate, key, version, loader)
		if cancelled {
			result.Cancelled = true
			e.logger.Info("validation cancelled",
				"processed", len(result.Records),
				"total", len(candidates),
			)
			return result
		}
		outcomes[key] = record
		result.Records = append(result.Records, record)

		if record.Resolved() && !seenEntries[record.Entry.ID] {
			seenEntries[record.Entry.ID] = true
			result.Resolved = append(result.Resolved, *record.Entry)
		}
	}

	e.logger.Info("validation complete",
		"candidates", len(candidates),
		"unique", len(outcomes),
		"resolved", len(result.Resolved),
	)
	return result
}

// resolveOne resolves a single not-yet-seen candidate, consulting the
// learning store first and recording the outcome after. The second
// return value reports that the batch was cancelled while waiting for
// the pacer; no record is produced in that case.
func (e *Engine) resolveOne(ctx context.Context, candidate, key, version, loader string) (resolve.Record, bool) {
	if e.history != nil {
		prior, err := e.history.Lookup(ctx, candidate)
		if err == nil && e.history.ShouldSkip(prior) {
			record := resolve.Record{
				Candidate: candidate,
				Key:       key,
				Strategy:  resolve.StrategyLearned,
				Reason:    skipReason(prior),
			}
			e.logger.Debug("skipping candidate from learned history",
				"candidate", candidate,
				"not_found_count", prior.NotFoundCount,
			)
			e.recordOutcome(candidate, record)
			return record, false
		}
	}

	// Pace only live resolutions; skips and dedup repeats never reach
	// the catalog. The pacer fails only when the batch context ends, so
	// a wait error is cancellation, not an outcome.
	if err := e.pacer.Wait(ctx); err != nil {
		return resolve.Record{}, true
	}

	record := e.resolver.Resolve(ctx, candidate, version, loader)
	e.recordOutcome(candidate, record)
	return record, false
}

// recordOutcome writes one sighting to the learning store. It runs
// detached from the batch context so cancellation never abandons a
// half-finished write. Transient outcomes are not sightings: a catalog
// outage says nothing about the candidate, and counting it would let
// three bad runs age a valid mod into a learned skip.
func (e *Engine) recordOutcome(candidate string, record resolve.Record) {
	if e.history == nil {
		return
	}
	if !record.Resolved() && !record.Reason.Terminal() {
		return
	}
	err := e.history.RecordOutcome(context.Background(), candidate,
		record.Resolved(), string(record.Reason))
	if err != nil {
		e.logger.Warn("failed to record learning outcome",
			"candidate", candidate,
			"error", err,
		)
	}
}

// skipReason picks the reason reported for a learned skip. Histories
// written before reasons were stored fall back to not-in-catalog.
func skipReason(rec *learning.Record) resolve.Reason {
	if rec.LastReason != "" {
		return resolve.Reason(rec.LastReason)
	}
	return resolve.ReasonNotInCatalog
}
