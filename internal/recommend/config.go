// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"fmt"
	"time"
)

// Config contains the pipeline limits.
type Config struct {
	// Workers is the fan-out pool size for catalog lookups.
	Workers int `json:"workers"`

	// CandidateWindow is how many top-ranked unwatched items get enriched.
	CandidateWindow int `json:"candidate_window"`

	// MaxResults caps the number of returned records.
	MaxResults int `json:"max_results"`

	// MaxWatched caps the number of identifiers accepted per request.
	MaxWatched int `json:"max_watched"`

	// RequestTimeout bounds one whole pipeline run.
	RequestTimeout time.Duration `json:"request_timeout"`

	// InvalidatePerRequest clears the feature cache at the start of every
	// gathering phase.
	InvalidatePerRequest bool `json:"invalidate_per_request"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:         8,
		CandidateWindow: 20,
		MaxResults:      12,
		MaxWatched:      500,
		RequestTimeout:  20 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.MaxResults < 1 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	if c.CandidateWindow < c.MaxResults {
		return fmt.Errorf("candidate_window must be >= max_results, got %d < %d", c.CandidateWindow, c.MaxResults)
	}
	if c.MaxWatched < 1 {
		return fmt.Errorf("max_watched must be positive, got %d", c.MaxWatched)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}
