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
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/audit"
	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/corpus"
	"github.com/tomtom215/watchnext/internal/events"
	"github.com/tomtom215/watchnext/internal/recommend"
)

// maxBodyBytes bounds request bodies. Several thousand ids fit.
const maxBodyBytes = 64 << 10

// Recommender is the pipeline as seen by the handlers.
type Recommender interface {
	Recommend(ctx context.Context, watchedIDs []int) (*recommend.Result, error)
	InvalidateCaches(ctx context.Context, trigger string) (int, error)
	CacheStats() cache.Stats
	CorpusSummary() corpus.Summary
}

// InvalidationPublisher announces a cache invalidation to other replicas.
type InvalidationPublisher interface {
	PublishInvalidation(ctx context.Context, reason string) (*events.InvalidationEvent, error)
}

// BreakerStateReporter exposes the catalog circuit breaker state.
type BreakerStateReporter interface {
	State() string
}

// Auditor records and lists maintenance actions.
type Auditor interface {
	LogInvalidation(ctx context.Context, actor audit.Actor, source audit.Source, inv audit.Invalidation, err error)
	Query(ctx context.Context, filter audit.QueryFilter) ([]audit.Event, error)
}

// Handler serves all API routes.
type Handler struct {
	recommender Recommender
	publisher   InvalidationPublisher
	breaker     BreakerStateReporter
	auditor     Auditor
	version     string
	startTime   time.Time
	logger      zerolog.Logger
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithPublisher fans invalidations out over the event bus.
func WithPublisher(p InvalidationPublisher) HandlerOption {
	return func(h *Handler) { h.publisher = p }
}

// WithBreaker reports the catalog breaker state in readiness checks.
func WithBreaker(b BreakerStateReporter) HandlerOption {
	return func(h *Handler) { h.breaker = b }
}

// WithAuditor records invalidations and enables GET /api/v1/audit.
func WithAuditor(a Auditor) HandlerOption {
	return func(h *Handler) { h.auditor = a }
}

// WithVersion sets the version string reported by health endpoints.
func WithVersion(v string) HandlerOption {
	return func(h *Handler) { h.version = v }
}

// WithLogger sets the handler logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(l zerolog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = l }
}

// NewHandler creates a handler for the given recommender.
func NewHandler(r Recommender, opts ...HandlerOption) *Handler {
	h := &Handler{
		recommender: r,
		version:     "dev",
		startTime:   time.Now(),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With().Str("component", "api").Logger()
	return h
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched and returns io.EOF.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return errors.Join(ErrMalformedBody, err)
	}
	return nil
}
