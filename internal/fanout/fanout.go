// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package fanout runs independent per-key lookups on a bounded worker pool
// and joins the results by key.
//
// Tasks never cancel each other: a task that fails is expected to encode
// the failure in its result value, and the remaining tasks keep running.
package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/watchnext/internal/metrics"
)

// DefaultWorkers is the pool size used when none is configured.
const DefaultWorkers = 8

type options struct {
	workers int
	phase   string
}

// Option configures Run.
type Option func(*options)

// WithWorkers sets the pool size. Non-positive values keep the default.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithPhase labels the task metrics.
func WithPhase(phase string) Option {
	return func(o *options) {
		if phase != "" {
			o.phase = phase
		}
	}
}

// Run calls fn once per distinct key using at most the configured number of
// concurrent workers, and returns once every task has finished. The result
// holds exactly one entry per distinct key regardless of completion order.
//
// Run does not stop dispatching when ctx is done. fn still sees the context
// and decides what a canceled lookup yields.
func Run[K comparable, V any](ctx context.Context, keys []K, fn func(context.Context, K) V, opts ...Option) map[K]V {
	o := options{workers: DefaultWorkers, phase: "default"}
	for _, opt := range opts {
		opt(&o)
	}

	distinct := Distinct(keys)
	results := make(map[K]V, len(distinct))
	if len(distinct) == 0 {
		return results
	}

	workerCount := o.workers
	if workerCount > len(distinct) {
		workerCount = len(distinct)
	}

	type result struct {
		key   K
		value V
	}

	jobs := make(chan K, len(distinct))
	out := make(chan result, len(distinct))
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				metrics.TrackFanoutInFlight(o.phase, true)
				start := time.Now()
				value := fn(ctx, key)
				metrics.RecordFanoutTask(o.phase, time.Since(start))
				metrics.TrackFanoutInFlight(o.phase, false)
				out <- result{key: key, value: value}
			}
		}()
	}

	for _, key := range distinct {
		jobs <- key
	}
	close(jobs)

	wg.Wait()
	close(out)

	for r := range out {
		results[r.key] = r.value
	}
	return results
}

// Distinct returns keys with duplicates removed, keeping first-seen order.
func Distinct[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
