// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package cache memoizes per-item catalog lookups across requests.
//
// Entries are keyed by (item id, kind). The three kinds are feature text,
// poster reference and detail record, and each kind is bounded on its own.
// Values are opaque bytes so backends can persist them. GetOrComputeJSON
// layers typed access on top.
//
// Backends do not deduplicate in-flight work. Two concurrent misses for the
// same key both run their compute function and the last write wins. Lookups
// are idempotent, so the only cost is a redundant upstream call.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultCapacityPerKind bounds each kind's entry count.
const DefaultCapacityPerKind = 10000

// Kind identifies which catalog lookup an entry memoizes.
type Kind string

const (
	KindFeatureText Kind = "feature_text"
	KindPoster      Kind = "poster"
	KindDetail      Kind = "detail"
)

// Kinds lists every cache kind in a stable order.
var Kinds = []Kind{KindFeatureText, KindPoster, KindDetail}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindFeatureText, KindPoster, KindDetail:
		return true
	}
	return false
}

// Key addresses one cache entry.
type Key struct {
	ItemID int
	Kind   Kind
}

// String renders the key as "kind:id".
func (k Key) String() string {
	return string(k.Kind) + ":" + strconv.Itoa(k.ItemID)
}

// ParseKey is the inverse of Key.String.
func ParseKey(s string) (Key, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return Key{}, fmt.Errorf("malformed cache key %q", s)
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return Key{}, fmt.Errorf("malformed cache key %q: %w", s, err)
	}
	k := Key{ItemID: n, Kind: Kind(kind)}
	if !k.Kind.Valid() {
		return Key{}, fmt.Errorf("unknown cache kind %q", kind)
	}
	return k, nil
}

// ComputeFunc produces the value for a missing entry. A returned error means
// no value was produced and nothing is stored.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// Stats is a point-in-time snapshot of cache activity.
type Stats struct {
	Backend       string       `json:"backend"`
	Hits          int64        `json:"hits"`
	Misses        int64        `json:"misses"`
	Invalidations int64        `json:"invalidations"`
	Entries       map[Kind]int `json:"entries"`
}

// HitRate returns hits as a fraction of all lookups, or 0 with no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is the feature cache contract used by the recommendation pipeline.
type Cache interface {
	// GetOrCompute returns the stored value for key or runs compute and
	// stores its result.
	GetOrCompute(ctx context.Context, key Key, compute ComputeFunc) ([]byte, error)

	// InvalidateAll drops every entry of every kind and returns how many
	// entries were removed.
	InvalidateAll(ctx context.Context) (int, error)

	// Stats returns a snapshot of hit, miss and entry counts.
	Stats() Stats

	// Close releases backend resources.
	Close() error
}

// Sweeper is implemented by backends that need periodic expiry sweeps.
type Sweeper interface {
	CleanupExpired() int
}
