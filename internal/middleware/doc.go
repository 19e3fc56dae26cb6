// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package middleware provides the HTTP middleware stack shared by the API
// routes: request ids, access logging, Prometheus instrumentation and
// security headers. Every middleware has the chi signature
// func(http.Handler) http.Handler.
//
// Recommended order:
//
//	r.Use(middleware.RequestID)
//	r.Use(chimiddleware.RealIP)
//	r.Use(middleware.AccessLog(logger))
//	r.Use(chimiddleware.Recoverer)
//	r.Use(middleware.PrometheusMetrics)
//	r.Use(middleware.SecurityHeaders)
package middleware
