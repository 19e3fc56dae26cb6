// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package recommend implements the "what to watch next" request pipeline.
//
// # Stages
//
// A request moves through a fixed sequence of states:
//
//	Validating -> GatheringFeatures -> Scoring -> Enriching -> Assembling -> Done
//
// and may end in Rejected from Validating (no or too many identifiers) or
// from GatheringFeatures (no watched item produced feature text).
//
// GatheringFeatures and Enriching fan out over a bounded worker pool. Each
// catalog lookup goes through the shared feature cache, which tolerates
// duplicate concurrent computation of the same key.
//
// # Usage
//
//	p, err := recommend.NewPipeline(recommend.DefaultConfig(), svc, featureCache, corp, logger)
//	if err != nil {
//	    return err
//	}
//	res, err := p.Recommend(ctx, []int{550, 680})
//	switch {
//	case errors.Is(err, recommend.ErrNoIdentifiers):
//	    // 400
//	case recommend.IsRetryable(err):
//	    // 503
//	}
//
// # Ranking
//
// Candidates are ordered by descending cosine score with ties broken by
// corpus row order. Watched items never appear in the output.
package recommend
