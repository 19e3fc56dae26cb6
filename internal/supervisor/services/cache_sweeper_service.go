// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredEntrySweeper removes expired cache entries and reports how many
// were dropped. Both cache backends satisfy it.
type ExpiredEntrySweeper interface {
	CleanupExpired() int
}

// CacheSweeperService periodically drops expired feature cache entries so
// TTL-bounded memory is reclaimed between lookups.
type CacheSweeperService struct {
	sweeper  ExpiredEntrySweeper
	interval time.Duration
	name     string
	logger   zerolog.Logger
}

// NewCacheSweeperService creates a sweeper. A non-positive interval
// defaults to 10 minutes.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCacheSweeperService(sweeper ExpiredEntrySweeper, interval time.Duration, logger zerolog.Logger) *CacheSweeperService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &CacheSweeperService{
		sweeper:  sweeper,
		interval: interval,
		name:     "cache-sweeper",
		logger:   logger.With().Str("service", "cache-sweeper").Logger(),
	}
}

// Serve implements suture.Service.
func (s *CacheSweeperService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("Cache sweeper started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweeper.CleanupExpired(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("Expired cache entries removed")
			}
		}
	}
}

// String implements fmt.Stringer for logging.
func (s *CacheSweeperService) String() string {
	return s.name
}
