// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package catalog fetches live per-item metadata from TMDB.
//
// The Catalog operations fail soft. Network errors, non-2xx statuses,
// malformed payloads and an open circuit breaker all surface as an absent
// Lookup, so callers branch on presence instead of handling errors.
package catalog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/metrics"
)

// DetailRecord is the enrichment data for one item.
type DetailRecord struct {
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	Overview      string  `json:"overview"`
	Tagline       string  `json:"tagline"`
	PosterPath    string  `json:"poster_path"`
}

// Catalog is the live metadata source used by the recommendation pipeline.
type Catalog interface {
	FetchFeatureText(ctx context.Context, id int) Lookup[string]
	FetchPosterReference(ctx context.Context, id int) Lookup[string]
	FetchDetailRecord(ctx context.Context, id int) Lookup[DetailRecord]
}

// Service implements Catalog on top of an API.
type Service struct {
	api       API
	imageBase string
	logger    zerolog.Logger
}

var _ Catalog = (*Service)(nil)

// NewService creates a catalog service. An empty imageBase uses DefaultImageBaseURL.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewService(api API, imageBase string, logger zerolog.Logger) *Service {
	if imageBase == "" {
		imageBase = DefaultImageBaseURL
	}
	return &Service{
		api:       api,
		imageBase: imageBase,
		logger:    logger.With().Str("component", "catalog").Logger(),
	}
}

// FetchFeatureText implements Catalog. A failed detail fetch makes the whole
// lookup absent; a failed keyword fetch only empties the keyword segment.
func (s *Service) FetchFeatureText(ctx context.Context, id int) Lookup[string] {
	movie, err := s.api.GetMovie(ctx, id)
	if err != nil {
		s.logFailure("feature_text", id, err)
		metrics.RecordCatalogLookup("feature_text", false)
		return Absent[string]()
	}

	var keywords []Keyword
	if kw, err := s.api.GetKeywords(ctx, id); err != nil {
		s.logFailure("keywords", id, err)
	} else {
		keywords = kw.Keywords
	}

	text := BuildFeatureText(movie, keywords)
	if text == "" {
		metrics.RecordCatalogLookup("feature_text", false)
		return Absent[string]()
	}
	metrics.RecordCatalogLookup("feature_text", true)
	return Present(text)
}

// FetchPosterReference implements Catalog.
func (s *Service) FetchPosterReference(ctx context.Context, id int) Lookup[string] {
	movie, err := s.api.GetMovie(ctx, id)
	if err != nil {
		s.logFailure("poster", id, err)
		metrics.RecordCatalogLookup("poster", false)
		return Absent[string]()
	}
	posterURL := PosterURL(s.imageBase, movie.PosterPath)
	if posterURL == "" {
		metrics.RecordCatalogLookup("poster", false)
		return Absent[string]()
	}
	metrics.RecordCatalogLookup("poster", true)
	return Present(posterURL)
}

// FetchDetailRecord implements Catalog.
func (s *Service) FetchDetailRecord(ctx context.Context, id int) Lookup[DetailRecord] {
	movie, err := s.api.GetMovie(ctx, id)
	if err != nil {
		s.logFailure("detail", id, err)
		metrics.RecordCatalogLookup("detail", false)
		return Absent[DetailRecord]()
	}
	metrics.RecordCatalogLookup("detail", true)
	return Present(DetailRecord{
		Title:         movie.Title,
		OriginalTitle: movie.OriginalTitle,
		ReleaseDate:   movie.ReleaseDate,
		VoteAverage:   movie.VoteAverage,
		Overview:      movie.Overview,
		Tagline:       movie.Tagline,
		PosterPath:    movie.PosterPath,
	})
}

func (s *Service) logFailure(op string, id int, err error) {
	s.logger.Debug().Err(err).Str("operation", op).Int("item_id", id).Msg("Catalog lookup failed")
}
