// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/watchnext/internal/recommend"
)

// Legacy route messages, kept byte for byte for existing frontends.
const (
	legacyMsgNoIDs          = "No movie IDs provided"
	legacyMsgFetchFailed    = "Failed to fetch data for given IDs"
	legacyMsgCacheCleared   = "Cache cleared successfully"
	legacyMsgCacheFailed    = "Failed to clear cache"
	legacyMsgInternalFailed = "Internal server error"
)

// ErrMalformedBody indicates a request body that is not valid JSON.
var ErrMalformedBody = errors.New("request body is not valid JSON")

// classifyPipelineError maps a pipeline failure to a status and error body.
func classifyPipelineError(err error) (int, *APIError) {
	switch {
	case errors.Is(err, recommend.ErrNoIdentifiers):
		return http.StatusBadRequest, &APIError{
			Code:    ErrCodeNoIdentifiers,
			Message: "watchedIds must contain at least one identifier",
		}
	case errors.Is(err, recommend.ErrTooManyIdentifiers):
		return http.StatusBadRequest, &APIError{
			Code:    ErrCodeTooManyIdentifiers,
			Message: err.Error(),
		}
	case errors.Is(err, recommend.ErrNoFeatureData):
		return http.StatusServiceUnavailable, &APIError{
			Code:      ErrCodeUpstreamUnavailable,
			Message:   "No feature data could be fetched for the watched identifiers",
			Retryable: true,
		}
	case recommend.IsClientInput(err):
		return http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: err.Error()}
	default:
		return http.StatusInternalServerError, &APIError{
			Code:    ErrCodeInternalError,
			Message: "Failed to generate recommendations",
		}
	}
}

// legacyErrorBody is the error shape of the unversioned routes.
type legacyErrorBody struct {
	Error string `json:"error"`
}

// legacyMessageBody is the success shape of /clear-cache.
type legacyMessageBody struct {
	Message string `json:"message"`
}
