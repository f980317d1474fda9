// Package learning persists per-candidate resolution history across
// runs. The store is an optimization layer: it lets the validation
// engine skip live lookups for candidates that have repeatedly failed,
// and it feeds the generator examples of what worked and what did not.
// The live resolution chain stays authoritative whenever consulted.
package learning

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/modsmith/modsmith-server/internal/util"
)

// keyPrefix namespaces candidate records in the database.
const keyPrefix = "mod:"

// DefaultMinSightings is how many consistent not-found sightings, with
// zero successes ever, are needed before ShouldSkip fires.
const DefaultMinSightings = 3

// Record is the stored history for one normalized candidate.
// Unknown fields are ignored on read and missing fields default to
// zero, so the on-disk format stays readable across versions.
type Record struct {
	FoundCount    int       `json:"found_count"`
	NotFoundCount int       `json:"not_found_count"`
	LastReason    string    `json:"last_reason,omitempty"`
	LastSeen      time.Time `json:"last_seen"`
}

// Store wraps a Badger database holding candidate history.
type Store struct {
	db           *badger.DB
	logger       *slog.Logger
	minSightings int
}

// Option configures a Store.
type Option func(*Store)

// WithMinSightings overrides the skip threshold.
func WithMinSightings(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.minSightings = n
		}
	}
}

// Open opens (or creates) the store at path. A database that fails to
// open is treated as corrupt: it is reset to empty with a warning and
// reopened, because losing learned history must never fail a run.
func Open(path string, logger *slog.Logger, options ...Option) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := openBadger(path)
	if err != nil {
		logger.Warn("learning store unreadable, resetting to empty",
			"path", path,
			"error", err,
		)
		if rmErr := os.RemoveAll(path); rmErr != nil {
			return nil, fmt.Errorf("failed to reset learning store: %w", rmErr)
		}
		db, err = openBadger(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open learning store: %w", err)
		}
	}

	s := &Store{
		db:           db,
		logger:       logger,
		minSightings: DefaultMinSightings,
	}
	for _, opt := range options {
		opt(s)
	}

	logger.Info("learning store opened", "path", path)
	return s, nil
}

func openBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	return badger.Open(opts)
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	s.logger.Debug("closing learning store")
	return s.db.Close()
}

// Lookup returns the stored record for a candidate, or nil when the
// candidate has never been seen. A record that fails to parse is
// dropped and reported as absent.
func (s *Store) Lookup(ctx context.Context, candidate string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := storeKey(candidate)
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("dropping unreadable learning record",
			"candidate", candidate,
			"error", err,
		)
		_ = s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		return nil, nil
	}
	return &rec, nil
}

// RecordOutcome increments the candidate's history with one run's
// resolution outcome. It is additive: counts only ever grow, and the
// read-modify-write happens inside a single transaction so concurrent
// stores on disk never lose increments within a process.
func (s *Store) RecordOutcome(ctx context.Context, candidate string, found bool, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := storeKey(candidate)
	return s.db.Update(func(txn *badger.Txn) error {
		var rec Record
		item, err := txn.Get(key)
		switch {
		case err == badger.ErrKeyNotFound:
			// First sighting.
		case err != nil:
			return err
		default:
			if valErr := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); valErr != nil {
				// Corrupt record: start the history over rather than fail.
				s.logger.Warn("overwriting unreadable learning record",
					"candidate", candidate,
					"error", valErr,
				)
				rec = Record{}
			}
		}

		if found {
			rec.FoundCount++
			rec.LastReason = ""
		} else {
			rec.NotFoundCount++
			rec.LastReason = reason
		}
		rec.LastSeen = time.Now().UTC()

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal learning record: %w", err)
		}
		return txn.Set(key, data)
	})
}

// ShouldSkip reports whether the record's history is consistent enough
// to skip live resolution: at least the configured number of not-found
// sightings and no success ever. Nil records never skip.
func (s *Store) ShouldSkip(rec *Record) bool {
	return rec != nil && rec.FoundCount == 0 && rec.NotFoundCount >= s.minSightings
}

// All returns every stored record keyed by normalized candidate.
// Unreadable records are skipped with a warning.
func (s *Store) All(ctx context.Context) (map[string]Record, error) {
	out := make(map[string]Record)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			key := string(item.Key()[len(keyPrefix):])
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				s.logger.Warn("skipping unreadable learning record", "key", key, "error", err)
				continue
			}
			out[key] = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reset drops every stored record.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("resetting learning store")
	return s.db.DropPrefix([]byte(keyPrefix))
}

func storeKey(candidate string) []byte {
	return []byte(keyPrefix + util.NormalizeKey(candidate))
}
