// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package events carries cache invalidation between service replicas.
//
// An invalidation issued on one replica (HTTP maintenance call, CLI) drops its
// own catalog lookup caches and publishes an InvalidationEvent. Every other
// replica runs a Listener that applies the event to its local caches. Two
// transports are available:
//
//   - memory: Watermill gochannel pub/sub, for single-process deployments and tests
//   - nats: Watermill over core NATS subjects (no JetStream), so every
//     subscribed replica receives every event
//
// Events carry the publishing replica's origin id. A listener skips events
// with its own origin because the publisher already invalidated locally.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// DefaultTopic is the subject invalidation events are published on.
const DefaultTopic = "watchnext.cache.invalidate"

// ScopeAll invalidates every kind of every cached item.
const ScopeAll = "all"

// Errors returned by the events package.
var (
	ErrBusClosed    = errors.New("invalidation bus is closed")
	ErrInvalidEvent = errors.New("invalid invalidation event")
	ErrUnknownScope = errors.New("unknown invalidation scope")
)

// InvalidationEvent asks every replica to drop its catalog lookup caches.
type InvalidationEvent struct {
	EventID  string    `json:"event_id"`
	Origin   string    `json:"origin"`
	Scope    string    `json:"scope"`
	Reason   string    `json:"reason,omitempty"`
	IssuedAt time.Time `json:"issued_at"`
}

// Validate checks the fields a listener relies on.
func (e *InvalidationEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: missing event_id", ErrInvalidEvent)
	}
	if e.Origin == "" {
		return fmt.Errorf("%w: missing origin", ErrInvalidEvent)
	}
	if e.Scope != ScopeAll {
		return fmt.Errorf("%w: %q", ErrUnknownScope, e.Scope)
	}
	return nil
}

// Marshal encodes the event as a message payload.
func (e *InvalidationEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEvent decodes and validates a message payload.
func UnmarshalEvent(payload []byte) (*InvalidationEvent, error) {
	var e InvalidationEvent
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

type eventContextKey struct{}

// ContextWithEvent attaches the event being applied to ctx.
func ContextWithEvent(ctx context.Context, e *InvalidationEvent) context.Context {
	return context.WithValue(ctx, eventContextKey{}, e)
}

// EventFromContext returns the event attached by ContextWithEvent.
func EventFromContext(ctx context.Context) (*InvalidationEvent, bool) {
	e, ok := ctx.Value(eventContextKey{}).(*InvalidationEvent)
	return e, ok && e != nil
}
