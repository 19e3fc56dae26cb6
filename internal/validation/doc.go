// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package validation validates decoded request bodies with
// go-playground/validator v10.
//
// A single validator instance is shared (it caches struct metadata). Field
// names in errors are taken from json tags so messages name what the client
// sent:
//
//	var req validation.RecommendRequest
//	if err := json.NewDecoder(r.Body).Decode(&req); err != nil { ... }
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // 400 with apiErr.Code and apiErr.Message
//	}
package validation

// RecommendRequest is the body of POST /api/v1/recommendations. The list
// length is bounded by the pipeline's configured limit, not here.
type RecommendRequest struct {
	WatchedIDs []int `json:"watchedIds" validate:"dive,gt=0"`
}

// InvalidateRequest is the optional body of POST /api/v1/cache/invalidate.
type InvalidateRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=200,printascii"`
}

// AuditQuery holds the query parameters of GET /api/v1/audit.
type AuditQuery struct {
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=1000"`
	Type    string `json:"type" validate:"omitempty,oneof=cache.invalidated cache.remote_invalidated authz.denied"`
	Outcome string `json:"outcome" validate:"omitempty,oneof=success failure"`
	Actor   string `json:"actor" validate:"omitempty,max=200"`
}
