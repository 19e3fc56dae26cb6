// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/recommend"
	"github.com/tomtom215/watchnext/internal/validation"
)

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req validation.RecommendRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		rw.BadRequest("Request body must be a JSON object with a watchedIds array")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	result, err := h.recommender.Recommend(r.Context(), req.WatchedIDs)
	if err != nil {
		status, apiErr := classifyPipelineError(err)
		if status >= http.StatusInternalServerError {
			logging.Ctx(r.Context()).Warn().Err(err).Int("status", status).Msg("Recommendation failed")
		}
		rw.writeError(status, apiErr)
		return
	}

	rw.SuccessWithMeta(result.Records, &APIMeta{
		Count:        intPtr(len(result.Records)),
		Watched:      intPtr(result.Metadata.Watched),
		WithFeatures: intPtr(result.Metadata.WithFeatures),
		Candidates:   intPtr(result.Metadata.Candidates),
	})
}

// legacyRecommendRequest accepts the body of the original /recommend route.
type legacyRecommendRequest struct {
	WatchedIDs []int `json:"watchedIds"`
}

// LegacyRecommend handles POST /recommend with the original response shapes.
func (h *Handler) LegacyRecommend(w http.ResponseWriter, r *http.Request) {
	var req legacyRecommendRequest
	if err := decodeJSON(w, r, &req); err != nil || len(req.WatchedIDs) == 0 {
		writeJSON(w, r, http.StatusBadRequest, legacyErrorBody{Error: legacyMsgNoIDs})
		return
	}
	if verr := validation.ValidateStruct(&validation.RecommendRequest{WatchedIDs: req.WatchedIDs}); verr != nil {
		writeJSON(w, r, http.StatusBadRequest, legacyErrorBody{Error: verr.Error()})
		return
	}

	result, err := h.recommender.Recommend(r.Context(), req.WatchedIDs)
	switch {
	case err == nil:
		writeJSON(w, r, http.StatusOK, result.Records)
	case errors.Is(err, recommend.ErrNoIdentifiers):
		writeJSON(w, r, http.StatusBadRequest, legacyErrorBody{Error: legacyMsgNoIDs})
	case errors.Is(err, recommend.ErrNoFeatureData):
		writeJSON(w, r, http.StatusInternalServerError, legacyErrorBody{Error: legacyMsgFetchFailed})
	case recommend.IsClientInput(err):
		writeJSON(w, r, http.StatusBadRequest, legacyErrorBody{Error: err.Error()})
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Legacy recommendation failed")
		writeJSON(w, r, http.StatusInternalServerError, legacyErrorBody{Error: legacyMsgInternalFailed})
	}
}
