// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/metrics"
)

// TriggerEvent is the invalidation trigger recorded for applied events.
const TriggerEvent = "event"

// Outcomes recorded for received events.
const (
	OutcomeApplied    = "applied"
	OutcomeSkippedOwn = "skipped_self"
	OutcomeMalformed  = "malformed"
	OutcomeFailed     = "failed"
)

// Invalidator drops local caches.
type Invalidator interface {
	InvalidateCaches(ctx context.Context, trigger string) (int, error)
}

// Listener applies invalidation events from other replicas.
type Listener struct {
	bus    *Bus
	target Invalidator
	ready     chan struct{}
	readyOnce sync.Once
	logger    zerolog.Logger
}

// NewListener creates a listener that applies events to target.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewListener(bus *Bus, target Invalidator, logger zerolog.Logger) *Listener {
	return &Listener{
		bus:    bus,
		target: target,
		ready:  make(chan struct{}),
		logger: logger.With().Str("component", "invalidation-listener").Logger(),
	}
}

// Ready is closed once the first subscription is established. It stays
// closed across restarts of Run.
func (l *Listener) Ready() <-chan struct{} {
	return l.ready
}

// Run processes events until ctx is canceled. Messages are acked when
// applied, skipped or undecodable, and nacked when invalidation fails.
// Run may be called again after it returns, which is how the supervisor
// restarts it.
func (l *Listener) Run(ctx context.Context) error {
	messages, err := l.bus.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", l.bus.Topic(), err)
	}
	l.readyOnce.Do(func() { close(l.ready) })
	l.logger.Info().Str("topic", l.bus.Topic()).Str("origin", l.bus.Origin()).Msg("Invalidation listener started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if err := l.processMessage(ctx, msg); err != nil {
				l.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Invalidation event processing failed")
			}
		}
	}
}

func (l *Listener) processMessage(ctx context.Context, msg *message.Message) error {
	outcome, err := l.apply(ctx, msg)
	metrics.RecordInvalidationReceived(outcome)
	if outcome == OutcomeFailed {
		msg.Nack()
		return err
	}
	msg.Ack()
	return err
}

func (l *Listener) apply(ctx context.Context, msg *message.Message) (string, error) {
	event, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		return OutcomeMalformed, err
	}
	if event.Origin == l.bus.Origin() {
		l.logger.Debug().Str("event_id", event.EventID).Msg("Skipping own invalidation event")
		return OutcomeSkippedOwn, nil
	}

	dropped, err := l.target.InvalidateCaches(ContextWithEvent(ctx, event), TriggerEvent)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("apply event %s: %w", event.EventID, err)
	}

	l.logger.Info().
		Str("event_id", event.EventID).
		Str("origin", event.Origin).
		Str("reason", event.Reason).
		Int("dropped", dropped).
		Msg("Applied remote invalidation")
	return OutcomeApplied, nil
}
