// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/metrics"
)

const (
	backendBadger = "badger"

	// badgerKeyPrefix namespaces every cache key so InvalidateAll can drop
	// them with a single DropPrefix.
	badgerKeyPrefix = "wn:cache:"
)

// Badger persists entries in BadgerDB so warm lookups survive restarts.
// Size is bounded by the per-entry TTL rather than an entry count.
type Badger struct {
	db     *badger.DB
	ttl    time.Duration
	owned  bool
	logger zerolog.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64
}

var (
	_ Cache   = (*Badger)(nil)
	_ Sweeper = (*Badger)(nil)
)

// OpenBadger opens (or creates) a BadgerDB at path. An empty path opens an
// in-memory database.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func OpenBadger(path string, ttl time.Duration, logger zerolog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %q: %w", path, err)
	}
	b := NewBadger(db, ttl, logger)
	b.owned = true
	return b, nil
}

// NewBadger wraps an already open database. The caller keeps ownership of db.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadger(db *badger.DB, ttl time.Duration, logger zerolog.Logger) *Badger {
	return &Badger{
		db:     db,
		ttl:    ttl,
		logger: logger.With().Str("component", "cache").Str("backend", backendBadger).Logger(),
	}
}

func badgerKey(key Key) []byte {
	return []byte(badgerKeyPrefix + key.String())
}

func kindPrefix(kind Kind) []byte {
	return []byte(badgerKeyPrefix + string(kind) + ":")
}

// GetOrCompute implements Cache.
func (b *Badger) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) ([]byte, error) {
	if !key.Kind.Valid() {
		return nil, fmt.Errorf("unknown cache kind %q", key.Kind)
	}

	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	switch {
	case err == nil:
		b.hits.Add(1)
		metrics.RecordCacheLookup(string(key.Kind), true)
		return value, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		// fall through to compute
	default:
		// a read failure degrades to an uncached lookup
		b.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache read failed")
	}

	b.misses.Add(1)
	metrics.RecordCacheLookup(string(key.Kind), false)

	value, err = compute(ctx)
	if err != nil {
		return nil, err
	}

	werr := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(badgerKey(key), value)
		if b.ttl > 0 {
			entry = entry.WithTTL(b.ttl)
		}
		return txn.SetEntry(entry)
	})
	if werr != nil {
		b.logger.Warn().Err(werr).Str("key", key.String()).Msg("Cache write failed")
	}
	return value, nil
}

// InvalidateAll implements Cache.
func (b *Badger) InvalidateAll(_ context.Context) (int, error) {
	total := 0
	for _, n := range b.countEntries() {
		total += n
	}
	if err := b.db.DropPrefix([]byte(badgerKeyPrefix)); err != nil {
		return 0, fmt.Errorf("drop cache entries: %w", err)
	}
	for _, k := range Kinds {
		metrics.SetCacheEntries(backendBadger, string(k), 0)
	}
	b.invalidations.Add(1)
	b.logger.Info().Int("dropped", total).Msg("Feature cache invalidated")
	return total, nil
}

// CleanupExpired implements Sweeper. Badger hides expired keys on read, so
// the sweep only reclaims value log space and refreshes the entry gauges.
func (b *Badger) CleanupExpired() int {
	if err := b.db.RunValueLogGC(0.5); err != nil &&
		!errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
		b.logger.Debug().Err(err).Msg("Value log GC skipped")
	}
	for k, n := range b.countEntries() {
		metrics.SetCacheEntries(backendBadger, string(k), n)
	}
	return 0
}

// Stats implements Cache.
func (b *Badger) Stats() Stats {
	return Stats{
		Backend:       backendBadger,
		Hits:          b.hits.Load(),
		Misses:        b.misses.Load(),
		Invalidations: b.invalidations.Load(),
		Entries:       b.countEntries(),
	}
}

// Close implements Cache. The database is closed only when opened by OpenBadger.
func (b *Badger) Close() error {
	if !b.owned {
		return nil
	}
	return b.db.Close()
}

func (b *Badger) countEntries() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, k := range Kinds {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = kindPrefix(k)
			it := txn.NewIterator(opts)
			n := 0
			for it.Rewind(); it.Valid(); it.Next() {
				n++
			}
			it.Close()
			counts[k] = n
		}
		return nil
	})
	if err != nil {
		b.logger.Warn().Err(err).Msg("Cache entry count failed")
	}
	return counts
}
