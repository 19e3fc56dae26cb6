// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"net/http"
	"time"
)

// Health states reported by the readiness probe.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

// ReadinessStatus is the payload of GET /api/v1/health/ready.
type ReadinessStatus struct {
	Status       string  `json:"status"`
	Version      string  `json:"version"`
	CorpusLoaded bool    `json:"corpus_loaded"`
	CorpusItems  int     `json:"corpus_items"`
	BreakerState string  `json:"breaker_state,omitempty"`
	Uptime       float64 `json:"uptime"`
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":   true,
		"version": h.version,
		"uptime":  time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// An empty corpus makes the replica unready; an open catalog breaker only
// marks it degraded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	summary := h.recommender.CorpusSummary()
	status := ReadinessStatus{
		Status:       StatusHealthy,
		Version:      h.version,
		CorpusLoaded: summary.Items > 0,
		CorpusItems:  summary.Items,
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	if h.breaker != nil {
		status.BreakerState = h.breaker.State()
		if status.BreakerState == "open" {
			status.Status = StatusDegraded
		}
	}

	rw := NewResponseWriter(w, r)
	if !status.CorpusLoaded {
		status.Status = StatusNotReady
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Corpus is not loaded", status)
		return
	}
	rw.Success(status)
}
