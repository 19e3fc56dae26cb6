// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"time"

	"github.com/tomtom215/watchnext/internal/catalog"
)

// State is a pipeline stage.
type State int

// Pipeline states in execution order. Rejected is terminal.
const (
	StateValidating State = iota
	StateGatheringFeatures
	StateScoring
	StateEnriching
	StateAssembling
	StateDone
	StateRejected
)

// String returns the stage name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StateGatheringFeatures:
		return "gathering_features"
	case StateScoring:
		return "scoring"
	case StateEnriching:
		return "enriching"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Record is one recommendation.
type Record struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Poster   string  `json:"poster"`
	Year     string  `json:"year"`
	Rating   float64 `json:"rating"`
	Overview string  `json:"overview"`
}

// Enrichment is the live metadata gathered for one candidate.
type Enrichment struct {
	Poster catalog.Lookup[string]
	Detail catalog.Lookup[catalog.DetailRecord]
}

// Result is a completed pipeline run.
type Result struct {
	Records  []Record `json:"records"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes how a result was produced.
type Metadata struct {
	RequestID    string        `json:"request_id,omitempty"`
	Watched      int           `json:"watched"`
	WithFeatures int           `json:"with_features"`
	Candidates   int           `json:"candidates"`
	Duration     time.Duration `json:"-"`
	LatencyMS    int64         `json:"latency_ms"`
	Timestamp    time.Time     `json:"timestamp"`
}
