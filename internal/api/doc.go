// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

/*
Package api provides the HTTP surface of the recommendation service.

Routes are served by a chi router with this global middleware stack:

  - request id with logging context
  - real IP extraction and panic recovery
  - CORS through go-chi/cors, so the browser frontend can call the API
  - access logging and Prometheus request metrics

Versioned routes live under /api/v1 and answer with the APIResponse
envelope:

	POST /api/v1/recommendations     {"watchedIds": [550, 680]}
	POST /api/v1/cache/invalidate    drops every cached catalog lookup
	GET  /api/v1/cache/stats
	GET  /api/v1/corpus
	GET  /api/v1/audit               recent maintenance actions (admin)
	GET  /api/v1/health/live
	GET  /api/v1/health/ready

The legacy routes /recommend and /clear-cache keep the response shapes of
the original service: a bare JSON array of records on success and an
{"error": "..."} object on failure.

When security.auth_mode is "jwt", the maintenance routes require a bearer
token whose role the casbin policy allows for the path and method.
*/
package api
