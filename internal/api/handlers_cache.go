// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/tomtom215/watchnext/internal/audit"
	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/events"
	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/recommend"
	"github.com/tomtom215/watchnext/internal/validation"
)

// InvalidationResult is the payload of POST /api/v1/cache/invalidate.
type InvalidationResult struct {
	Dropped   int    `json:"dropped"`
	Scope     string `json:"scope"`
	Published bool   `json:"published"`
	EventID   string `json:"event_id,omitempty"`
}

// CacheStatsResponse is the payload of GET /api/v1/cache/stats.
type CacheStatsResponse struct {
	cache.Stats
	HitRate float64 `json:"hit_rate"`
}

// invalidate clears the local caches, announces the invalidation to the
// other replicas and records it in the audit log. A publish failure is
// logged and reported, not fatal: the local caches are already empty.
func (h *Handler) invalidate(r *http.Request, reason string) (*InvalidationResult, error) {
	result, err := h.invalidateAndPublish(r.Context(), reason)
	if h.auditor != nil {
		inv := audit.Invalidation{Trigger: recommend.TriggerManual, Reason: reason}
		if result != nil {
			inv.Dropped = result.Dropped
			inv.EventID = result.EventID
		}
		h.auditor.LogInvalidation(r.Context(), audit.ActorFromContext(r.Context()), audit.SourceFromRequest(r), inv, err)
	}
	return result, err
}

func (h *Handler) invalidateAndPublish(ctx context.Context, reason string) (*InvalidationResult, error) {
	dropped, err := h.recommender.InvalidateCaches(ctx, recommend.TriggerManual)
	if err != nil {
		return nil, err
	}

	result := &InvalidationResult{Dropped: dropped, Scope: events.ScopeAll}
	if h.publisher == nil {
		return result, nil
	}

	event, err := h.publisher.PublishInvalidation(ctx, reason)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to publish cache invalidation")
		return result, nil
	}
	result.Published = true
	result.EventID = event.EventID
	return result, nil
}

// InvalidateCache handles POST /api/v1/cache/invalidate.
func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req validation.InvalidateRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		rw.BadRequest("Request body must be empty or a JSON object")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	result, err := h.invalidate(r, req.Reason)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Cache invalidation failed")
		rw.InternalError("Failed to clear cache")
		return
	}
	rw.Success(result)
}

// LegacyClearCache handles POST /clear-cache with the original response shapes.
func (h *Handler) LegacyClearCache(w http.ResponseWriter, r *http.Request) {
	if _, err := h.invalidate(r, "legacy clear-cache"); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Cache invalidation failed")
		writeJSON(w, r, http.StatusInternalServerError, legacyErrorBody{Error: legacyMsgCacheFailed})
		return
	}
	writeJSON(w, r, http.StatusOK, legacyMessageBody{Message: legacyMsgCacheCleared})
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats := h.recommender.CacheStats()
	NewResponseWriter(w, r).Success(CacheStatsResponse{Stats: stats, HitRate: stats.HitRate()})
}

// Corpus handles GET /api/v1/corpus.
func (h *Handler) Corpus(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.recommender.CorpusSummary())
}
