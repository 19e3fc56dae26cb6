// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package audit

import (
	"context"

	"github.com/tomtom215/watchnext/internal/events"
)

// CacheInvalidator is the pipeline operation being audited.
type CacheInvalidator interface {
	InvalidateCaches(ctx context.Context, trigger string) (int, error)
}

// Invalidator records every invalidation it forwards to the wrapped target.
type Invalidator struct {
	target  CacheInvalidator
	auditor *Logger
}

// NewInvalidator wraps target. The event listener uses it so that fleet
// invalidations show up next to manual ones.
func NewInvalidator(target CacheInvalidator, auditor *Logger) *Invalidator {
	return &Invalidator{target: target, auditor: auditor}
}

// InvalidateCaches forwards to the target and records the outcome.
func (i *Invalidator) InvalidateCaches(ctx context.Context, trigger string) (int, error) {
	dropped, err := i.target.InvalidateCaches(ctx, trigger)

	inv := Invalidation{Trigger: trigger, Dropped: dropped}
	var source Source
	if e, ok := events.EventFromContext(ctx); ok {
		inv.Reason = e.Reason
		inv.EventID = e.EventID
		source.Instance = e.Origin
	}
	i.auditor.LogInvalidation(ctx, SystemActor(), source, inv, err)
	return dropped, err
}
