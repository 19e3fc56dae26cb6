// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/catalog"
	"github.com/tomtom215/watchnext/internal/corpus"
	"github.com/tomtom215/watchnext/internal/fanout"
	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/metrics"
)

// Invalidation triggers recorded in metrics and logs.
const (
	TriggerManual     = "manual"
	TriggerPerRequest = "per_request"
)

// Pipeline turns a watched list into recommendations. It is safe for
// concurrent use; the feature cache is the only state shared between runs.
type Pipeline struct {
	config  *Config
	catalog catalog.Catalog
	cache   cache.Cache
	corpus  *corpus.Corpus
	logger  zerolog.Logger
}

// NewPipeline creates a pipeline. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(cfg *Config, cat catalog.Catalog, c cache.Cache, corp *corpus.Corpus, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cat == nil || c == nil || corp == nil {
		return nil, errors.New("catalog, cache and corpus are required")
	}
	return &Pipeline{
		config:  cfg,
		catalog: cat,
		cache:   c,
		corpus:  corp,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Corpus returns the loaded corpus.
func (p *Pipeline) Corpus() *corpus.Corpus {
	return p.corpus
}

// run carries the per-request state through the stages.
type run struct {
	state   State
	started time.Time
	stage   time.Time
	logger  zerolog.Logger

	watched  []int
	exclude  map[int]struct{}
	features int
	scores   []float64
	order    []int
	window   []int
	enriched map[int]Enrichment
}

func (r *run) transition(next State) {
	if r.state != StateRejected {
		metrics.RecordPipelineStage(r.state.String(), time.Since(r.stage))
	}
	r.logger.Debug().Str("from", r.state.String()).Str("to", next.String()).Msg("Pipeline state transition")
	r.state = next
	r.stage = time.Now()
}

func (r *run) reject(kind ErrorKind, err error) error {
	state := r.state
	r.transition(StateRejected)
	metrics.RecordPipelineOutcome(StateRejected.String(), kind.String())
	r.logger.Info().Err(err).Str("state", state.String()).Str("kind", kind.String()).Msg("Recommendation request rejected")
	return &PipelineError{State: state, Kind: kind, Err: err}
}

// Recommend runs the full pipeline for the given watched identifiers.
func (p *Pipeline) Recommend(ctx context.Context, watchedIDs []int) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.RequestTimeout)
	defer cancel()

	now := time.Now()
	r := &run{
		state:   StateValidating,
		started: now,
		stage:   now,
		logger: p.logger.With().
			Str("request_id", logging.RequestIDFromContext(ctx)).
			Int("watched", len(watchedIDs)).
			Logger(),
	}
	r.logger.Debug().Msg("Processing recommendation request")

	if err := p.validate(r, watchedIDs); err != nil {
		return nil, err
	}

	r.transition(StateGatheringFeatures)
	text := p.gatherFeatures(ctx, r)
	if strings.TrimSpace(text) == "" {
		return nil, r.reject(KindUpstreamUnavailable, ErrNoFeatureData)
	}

	r.transition(StateScoring)
	r.scores = p.corpus.Engine.Score(text)
	r.order = RankOrder(r.scores)

	r.transition(StateEnriching)
	r.window = CandidateWindow(r.order, p.corpus.Items, r.exclude, p.config.CandidateWindow)
	r.enriched = fanout.Run(ctx, r.window, p.enrich,
		fanout.WithWorkers(p.config.Workers), fanout.WithPhase("enrichment"))

	r.transition(StateAssembling)
	records := Assemble(r.order, p.corpus.Items, r.exclude, r.enriched, p.config.MaxResults)

	r.transition(StateDone)
	metrics.RecordPipelineOutcome(StateDone.String(), "ok")
	metrics.RecordRecommendationsReturned(len(records))

	elapsed := time.Since(r.started)
	r.logger.Debug().
		Int("with_features", r.features).
		Int("candidates", len(r.window)).
		Int("returned", len(records)).
		Dur("duration", elapsed).
		Msg("Recommendation complete")

	return &Result{
		Records: records,
		Metadata: Metadata{
			RequestID:    logging.RequestIDFromContext(ctx),
			Watched:      len(r.watched),
			WithFeatures: r.features,
			Candidates:   len(r.window),
			Duration:     elapsed,
			LatencyMS:    elapsed.Milliseconds(),
			Timestamp:    time.Now().UTC(),
		},
	}, nil
}

func (p *Pipeline) validate(r *run, ids []int) error {
	if len(ids) == 0 {
		return r.reject(KindClientInput, ErrNoIdentifiers)
	}
	if len(ids) > p.config.MaxWatched {
		return r.reject(KindClientInput,
			fmt.Errorf("%w: %d exceeds the limit of %d", ErrTooManyIdentifiers, len(ids), p.config.MaxWatched))
	}

	r.watched = fanout.Distinct(ids)
	r.exclude = make(map[int]struct{}, len(r.watched))
	for _, id := range r.watched {
		r.exclude[id] = struct{}{}
	}
	return nil
}

// gatherFeatures fetches feature text for every distinct watched id and
// joins the values with single spaces in input order.
func (p *Pipeline) gatherFeatures(ctx context.Context, r *run) string {
	if p.config.InvalidatePerRequest {
		if _, err := p.InvalidateCaches(ctx, TriggerPerRequest); err != nil {
			r.logger.Warn().Err(err).Msg("Per-request cache invalidation failed")
		}
	}

	texts := fanout.Run(ctx, r.watched, p.featureText,
		fanout.WithWorkers(p.config.Workers), fanout.WithPhase("features"))

	parts := make([]string, 0, len(r.watched))
	for _, id := range r.watched {
		text := texts[id].OrElse("")
		if text != "" {
			r.features++
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// InvalidateCaches drops every cached catalog lookup. It runs outside any
// request and returns the number of entries removed.
func (p *Pipeline) InvalidateCaches(ctx context.Context, trigger string) (int, error) {
	dropped, err := p.cache.InvalidateAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("invalidate feature cache: %w", err)
	}
	metrics.RecordCacheInvalidation(trigger)
	p.logger.Info().Str("trigger", trigger).Int("dropped", dropped).Msg("Catalog lookup caches cleared")
	return dropped, nil
}

// CacheStats exposes the feature cache counters.
func (p *Pipeline) CacheStats() cache.Stats {
	return p.cache.Stats()
}

// CorpusSummary reports the dimensions of the loaded corpus.
func (p *Pipeline) CorpusSummary() corpus.Summary {
	return p.corpus.Summary()
}
