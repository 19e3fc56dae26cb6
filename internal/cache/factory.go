// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package cache

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config selects and sizes a cache backend.
type Config struct {
	// Backend is "memory" or "badger".
	Backend string

	// CapacityPerKind bounds each kind in the memory backend.
	CapacityPerKind int

	// TTL expires entries individually. Zero disables expiry (memory only).
	TTL time.Duration

	// Path is the badger data directory. Empty runs badger in memory.
	Path string
}

// New builds the configured backend.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(cfg Config, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", backendMemory:
		return NewMemory(cfg.CapacityPerKind, cfg.TTL, logger), nil
	case backendBadger:
		return OpenBadger(cfg.Path, cfg.TTL, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
