// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"context"

	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/catalog"
)

// cachedLookup runs fetch through the feature cache. Absent results are
// cached like any other value, except when the context ended during the
// fetch: that absence says nothing about the item, so it is returned
// without being stored.
func cachedLookup[T any](ctx context.Context, c cache.Cache, key cache.Key, fetch func(context.Context) catalog.Lookup[T]) (catalog.Lookup[T], error) {
	return cache.GetOrComputeJSON(ctx, c, key, func(ctx context.Context) (catalog.Lookup[T], error) {
		l := fetch(ctx)
		if !l.OK && ctx.Err() != nil {
			return l, ctx.Err()
		}
		return l, nil
	})
}

func (p *Pipeline) featureText(ctx context.Context, id int) catalog.Lookup[string] {
	l, err := cachedLookup(ctx, p.cache, cache.Key{ItemID: id, Kind: cache.KindFeatureText},
		func(ctx context.Context) catalog.Lookup[string] {
			return p.catalog.FetchFeatureText(ctx, id)
		})
	if err != nil {
		p.logger.Debug().Err(err).Int("item_id", id).Msg("Feature text lookup abandoned")
		return catalog.Absent[string]()
	}
	return l
}

func (p *Pipeline) poster(ctx context.Context, id int) catalog.Lookup[string] {
	l, err := cachedLookup(ctx, p.cache, cache.Key{ItemID: id, Kind: cache.KindPoster},
		func(ctx context.Context) catalog.Lookup[string] {
			return p.catalog.FetchPosterReference(ctx, id)
		})
	if err != nil {
		p.logger.Debug().Err(err).Int("item_id", id).Msg("Poster lookup abandoned")
		return catalog.Absent[string]()
	}
	return l
}

func (p *Pipeline) detail(ctx context.Context, id int) catalog.Lookup[catalog.DetailRecord] {
	l, err := cachedLookup(ctx, p.cache, cache.Key{ItemID: id, Kind: cache.KindDetail},
		func(ctx context.Context) catalog.Lookup[catalog.DetailRecord] {
			return p.catalog.FetchDetailRecord(ctx, id)
		})
	if err != nil {
		p.logger.Debug().Err(err).Int("item_id", id).Msg("Detail lookup abandoned")
		return catalog.Absent[catalog.DetailRecord]()
	}
	return l
}

func (p *Pipeline) enrich(ctx context.Context, id int) Enrichment {
	return Enrichment{
		Poster: p.poster(ctx, id),
		Detail: p.detail(ctx, id),
	}
}
