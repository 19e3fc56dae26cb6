// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/metrics"
)

const backendMemory = "memory"

// Memory keeps one bounded LRU per kind in process memory.
type Memory struct {
	lrus   map[Kind]*LRU[int, []byte]
	logger zerolog.Logger

	hits          atomic.Int64
	misses        atomic.Int64
	invalidations atomic.Int64
}

var (
	_ Cache   = (*Memory)(nil)
	_ Sweeper = (*Memory)(nil)
)

// NewMemory creates an in-process cache. A ttl of zero disables expiry.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMemory(capacityPerKind int, ttl time.Duration, logger zerolog.Logger) *Memory {
	m := &Memory{
		lrus:   make(map[Kind]*LRU[int, []byte], len(Kinds)),
		logger: logger.With().Str("component", "cache").Str("backend", backendMemory).Logger(),
	}
	for _, k := range Kinds {
		m.lrus[k] = NewLRU[int, []byte](capacityPerKind, ttl)
	}
	return m
}

// setClock replaces the time source of every kind. Tests only.
func (m *Memory) setClock(now func() time.Time) {
	for _, l := range m.lrus {
		l.mu.Lock()
		l.now = now
		l.mu.Unlock()
	}
}

// GetOrCompute implements Cache.
func (m *Memory) GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) ([]byte, error) {
	l, ok := m.lrus[key.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown cache kind %q", key.Kind)
	}

	if v, hit := l.Get(key.ItemID); hit {
		m.hits.Add(1)
		metrics.RecordCacheLookup(string(key.Kind), true)
		return v, nil
	}
	m.misses.Add(1)
	metrics.RecordCacheLookup(string(key.Kind), false)

	// compute runs without holding any lock; concurrent misses may duplicate work
	v, err := compute(ctx)
	if err != nil {
		return nil, err
	}
	before, _ := l.Evictions()
	l.Add(key.ItemID, v)
	after, _ := l.Evictions()
	metrics.RecordCacheEviction("capacity", int(after-before))
	metrics.SetCacheEntries(backendMemory, string(key.Kind), l.Len())
	return v, nil
}

// InvalidateAll implements Cache.
func (m *Memory) InvalidateAll(_ context.Context) (int, error) {
	dropped := 0
	for _, k := range Kinds {
		dropped += m.lrus[k].Clear()
		metrics.SetCacheEntries(backendMemory, string(k), 0)
	}
	m.invalidations.Add(1)
	m.logger.Info().Int("dropped", dropped).Msg("Feature cache invalidated")
	return dropped, nil
}

// CleanupExpired implements Sweeper.
func (m *Memory) CleanupExpired() int {
	removed := 0
	for _, k := range Kinds {
		n := m.lrus[k].CleanupExpired()
		removed += n
		metrics.SetCacheEntries(backendMemory, string(k), m.lrus[k].Len())
	}
	metrics.RecordCacheEviction("expired", removed)
	if removed > 0 {
		m.logger.Debug().Int("removed", removed).Msg("Expired cache entries swept")
	}
	return removed
}

// Stats implements Cache.
func (m *Memory) Stats() Stats {
	entries := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		entries[k] = m.lrus[k].Len()
	}
	return Stats{
		Backend:       backendMemory,
		Hits:          m.hits.Load(),
		Misses:        m.misses.Load(),
		Invalidations: m.invalidations.Load(),
		Entries:       entries,
	}
}

// Close implements Cache.
func (m *Memory) Close() error {
	return nil
}
