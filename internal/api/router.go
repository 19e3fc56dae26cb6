// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/auth"
	"github.com/tomtom215/watchnext/internal/authz"
	"github.com/tomtom215/watchnext/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authn         *auth.Middleware
	authz         *authz.Middleware
	logger        zerolog.Logger
}

// RouterConfig collects the router dependencies. Authn and Authz may be nil
// when maintenance routes are open.
type RouterConfig struct {
	Handler    *Handler
	Middleware *ChiMiddleware
	Authn      *auth.Middleware
	Authz      *authz.Middleware
	Logger     zerolog.Logger
}

// NewRouter creates a router.
//
//nolint:gocritic // RouterConfig is passed once at startup
func NewRouter(cfg RouterConfig) *Router {
	if cfg.Middleware == nil {
		cfg.Middleware = NewChiMiddleware(nil)
	}
	return &Router{
		handler:       cfg.Handler,
		chiMiddleware: cfg.Middleware,
		authn:         cfg.Authn,
		authz:         cfg.Authz,
		logger:        cfg.Logger,
	}
}

// protected returns the middleware guarding maintenance routes. With auth
// disabled it is empty.
func (router *Router) protected() []func(http.Handler) http.Handler {
	if router.authn == nil || !router.authn.Enabled() {
		return nil
	}
	mws := []func(http.Handler) http.Handler{router.authn.Authenticate}
	if router.authz != nil {
		mws = append(mws, router.authz.AuthorizeRequest)
	}
	return mws
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global Middleware Stack
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.AccessLog(router.logger))
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Post("/recommendations", router.handler.Recommendations)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(router.protected()...)
			r.Get("/cache/stats", router.handler.CacheStats)
			r.Get("/corpus", router.handler.Corpus)
			r.Get("/audit", router.handler.AuditLog)
			r.With(router.chiMiddleware.RateLimitMaintenance()).Post("/cache/invalidate", router.handler.InvalidateCache)
		})
	})

	// Legacy routes
	r.With(router.chiMiddleware.RateLimit()).Post("/recommend", router.handler.LegacyRecommend)
	r.With(router.protected()...).
		With(router.chiMiddleware.RateLimitMaintenance()).
		Post("/clear-cache", router.handler.LegacyClearCache)

	return r
}
