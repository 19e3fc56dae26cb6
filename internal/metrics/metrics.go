// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package metrics holds the Prometheus collectors exported by WatchNext.
//
// Collectors are registered on the default registry through promauto and
// served by promhttp at /metrics. Callers use the Record* helpers rather than
// touching label values directly.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchnext_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchnext_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)

	// Feature Cache Metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_cache_lookups_total",
			Help: "Feature cache lookups by kind and result (hit, miss)",
		},
		[]string{"kind", "result"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchnext_cache_entries",
			Help: "Current number of feature cache entries by kind",
		},
		[]string{"backend", "kind"},
	)

	CacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_cache_invalidations_total",
			Help: "Total number of whole-cache invalidations by trigger",
		},
		[]string{"trigger"}, // maintenance, request, event
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_cache_evictions_total",
			Help: "Entries removed by capacity pressure or TTL expiry",
		},
		[]string{"reason"}, // capacity, expired
	)

	// Catalog (TMDB) Metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_catalog_requests_total",
			Help: "Outbound catalog HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchnext_catalog_request_duration_seconds",
			Help:    "Duration of outbound catalog HTTP requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)

	CatalogRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_catalog_retries_total",
			Help: "Outbound catalog retries after rate limiting",
		},
		[]string{"endpoint"},
	)

	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_catalog_lookups_total",
			Help: "Catalog lookups by operation and outcome (present, absent)",
		},
		[]string{"operation", "outcome"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchnext_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected, abandoned
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Fan-Out Metrics
	FanoutTaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchnext_fanout_task_duration_seconds",
			Help:    "Duration of a single fan-out task in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"phase"},
	)

	FanoutInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchnext_fanout_in_flight",
			Help: "Fan-out tasks currently executing",
		},
		[]string{"phase"},
	)

	// Pipeline Metrics
	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_pipeline_outcomes_total",
			Help: "Recommendation pipeline terminations by final state and reason",
		},
		[]string{"state", "reason"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watchnext_pipeline_stage_duration_seconds",
			Help:    "Time spent in each pipeline stage in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"stage"},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchnext_recommendations_returned",
			Help:    "Number of records returned per successful request",
			Buckets: []float64{0, 1, 3, 6, 9, 12},
		},
	)

	// Invalidation Event Metrics
	InvalidationEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_invalidation_events_published_total",
			Help: "Cache invalidation events published by result",
		},
		[]string{"result"},
	)

	InvalidationEventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchnext_invalidation_events_received_total",
			Help: "Cache invalidation events received by outcome",
		},
		[]string{"outcome"}, // applied, skipped_self, failed, malformed
	)

	// Corpus Metrics
	CorpusItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchnext_corpus_items",
			Help: "Number of items in the loaded corpus",
		},
	)

	CorpusTerms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchnext_corpus_terms",
			Help: "Vocabulary size of the loaded vectorizer",
		},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchnext_app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheLookup records a feature cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(kind, result).Inc()
}

// SetCacheEntries updates the entry gauge for one backend and kind.
func SetCacheEntries(backend, kind string, n int) {
	CacheEntries.WithLabelValues(backend, kind).Set(float64(n))
}

// RecordCacheInvalidation records a whole-cache invalidation.
func RecordCacheInvalidation(trigger string) {
	CacheInvalidations.WithLabelValues(trigger).Inc()
}

// RecordCacheEviction records n entries removed for reason.
func RecordCacheEviction(reason string, n int) {
	if n <= 0 {
		return
	}
	CacheEvictions.WithLabelValues(reason).Add(float64(n))
}

// RecordCatalogRequest records one outbound catalog HTTP call. A status of 0
// means the request never produced a response.
func RecordCatalogRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	CatalogRequests.WithLabelValues(endpoint, label).Inc()
	CatalogRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordCatalogRetry records a rate-limit retry.
func RecordCatalogRetry(endpoint string) {
	CatalogRetries.WithLabelValues(endpoint).Inc()
}

// RecordCatalogLookup records whether a catalog operation produced a value.
func RecordCatalogLookup(operation string, present bool) {
	outcome := "absent"
	if present {
		outcome = "present"
	}
	CatalogLookups.WithLabelValues(operation, outcome).Inc()
}

// RecordFanoutTask observes one fan-out task duration.
func RecordFanoutTask(phase string, duration time.Duration) {
	FanoutTaskDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// TrackFanoutInFlight adjusts the in-flight gauge for phase.
func TrackFanoutInFlight(phase string, inc bool) {
	if inc {
		FanoutInFlight.WithLabelValues(phase).Inc()
	} else {
		FanoutInFlight.WithLabelValues(phase).Dec()
	}
}

// RecordPipelineStage observes the time spent in one pipeline stage.
func RecordPipelineStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordPipelineOutcome records how a request terminated.
func RecordPipelineOutcome(state, reason string) {
	PipelineOutcomes.WithLabelValues(state, reason).Inc()
}

// RecordRecommendationsReturned observes the size of a successful response.
func RecordRecommendationsReturned(n int) {
	RecommendationsReturned.Observe(float64(n))
}

// RecordInvalidationPublished records the result of publishing an invalidation event.
func RecordInvalidationPublished(err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	InvalidationEventsPublished.WithLabelValues(result).Inc()
}

// RecordInvalidationReceived records how a received invalidation event was handled.
func RecordInvalidationReceived(outcome string) {
	InvalidationEventsReceived.WithLabelValues(outcome).Inc()
}

// SetCorpusSize publishes the loaded corpus dimensions.
func SetCorpusSize(items, terms int) {
	CorpusItems.Set(float64(items))
	CorpusTerms.Set(float64(terms))
}
