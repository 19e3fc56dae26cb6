// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package cache

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// GetOrComputeJSON is GetOrCompute with JSON encoding of V.
func GetOrComputeJSON[V any](ctx context.Context, c Cache, key Key, fn func(ctx context.Context) (V, error)) (V, error) {
	var out V

	raw, err := c.GetOrCompute(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return out, nil
}
