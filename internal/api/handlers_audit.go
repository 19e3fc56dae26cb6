// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/watchnext/internal/audit"
	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/validation"
)

// AuditLog handles GET /api/v1/audit.
//
// Query parameters: limit (1-1000, default 100), type, outcome, actor and
// since (RFC 3339).
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.auditor == nil {
		rw.Error(http.StatusNotFound, ErrCodeNotFound, "Audit log is disabled")
		return
	}

	q := r.URL.Query()
	query := validation.AuditQuery{
		Type:    q.Get("type"),
		Outcome: q.Get("outcome"),
		Actor:   q.Get("actor"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			rw.BadRequest("limit must be an integer")
			return
		}
		query.Limit = limit
	}
	if verr := validation.ValidateStruct(&query); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	filter := audit.DefaultQueryFilter()
	if query.Limit > 0 {
		filter.Limit = query.Limit
	}
	if query.Type != "" {
		filter.Types = []audit.EventType{audit.EventType(query.Type)}
	}
	if query.Outcome != "" {
		filter.Outcomes = []audit.Outcome{audit.Outcome(query.Outcome)}
	}
	filter.ActorID = query.Actor
	if raw := q.Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rw.BadRequest("since must be an RFC 3339 timestamp")
			return
		}
		filter.StartTime = &since
	}

	found, err := h.auditor.Query(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Audit query failed")
		rw.InternalError("Failed to query audit log")
		return
	}
	rw.SuccessWithMeta(found, &APIMeta{Count: intPtr(len(found))})
}
