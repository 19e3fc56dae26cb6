// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/auth"
	"github.com/tomtom215/watchnext/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// Enabled controls whether events are recorded at all.
	Enabled bool

	// BufferSize is the size of the async write buffer.
	BufferSize int

	// LogToStdout mirrors every event to the structured log.
	LogToStdout bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		BufferSize: 256,
	}
}

// Logger writes audit events to a Store from a background goroutine.
type Logger struct {
	config    *Config
	store     Store
	logger    zerolog.Logger
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// NewLogger creates a logger and starts its writer.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLogger(store Store, config *Config, logger zerolog.Logger) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:    config,
		store:     store,
		logger:    logger.With().Str("component", "audit").Logger(),
		eventChan: make(chan *Event, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			// Drain remaining events
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		if data, err := json.Marshal(event); err == nil {
			l.logger.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	if l.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		l.logger.Error().Err(err).Str("event_id", event.ID).Msg("Failed to save audit event")
	}
}

// Log queues an event. It never blocks; a full buffer drops the event.
func (l *Logger) Log(event *Event) {
	if !l.config.Enabled {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case <-l.stopChan:
		return
	default:
	}

	select {
	case l.eventChan <- event:
	default:
		l.logger.Warn().Str("event_id", event.ID).Msg("Audit event buffer full, dropping event")
	}
}

// Close stops the writer after draining queued events.
func (l *Logger) Close() error {
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	if l.store == nil {
		return []Event{}, nil
	}
	return l.store.Query(ctx, filter)
}

// Invalidation describes one cache clear.
type Invalidation struct {
	Trigger string `json:"trigger"`
	Reason  string `json:"reason,omitempty"`
	Dropped int    `json:"dropped"`
	EventID string `json:"event_id,omitempty"`
}

// LogInvalidation records a cache invalidation. A non-nil err marks it failed.
func (l *Logger) LogInvalidation(ctx context.Context, actor Actor, source Source, inv Invalidation, err error) {
	event := &Event{
		Type:        EventTypeCacheInvalidated,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      "cache.invalidate",
		Description: "Catalog lookup caches cleared",
		Metadata:    mustJSON(inv),
		RequestID:   logging.RequestIDFromContext(ctx),
	}
	if actor.Type == actorSystem {
		event.Type = EventTypeRemoteInvalidation
		event.Description = "Catalog lookup caches cleared by fleet event"
	}
	if err != nil {
		event.Severity = SeverityError
		event.Outcome = OutcomeFailure
		event.Description = "Cache invalidation failed: " + err.Error()
	}
	l.Log(event)
}

// LogAuthzDenied records a maintenance request refused by policy.
func (l *Logger) LogAuthzDenied(ctx context.Context, actor Actor, source Source, resource, action string) {
	l.Log(&Event{
		Type:        EventTypeAuthzDenied,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		Actor:       actor,
		Source:      source,
		Action:      action,
		Description: "Access denied to " + resource,
		Metadata:    mustJSON(map[string]string{"resource": resource}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

const actorSystem = "system"

// ActorFromContext builds an actor from the JWT claims on ctx, or an
// anonymous actor when authentication is disabled.
func ActorFromContext(ctx context.Context) Actor {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return Actor{ID: "anonymous", Type: "anonymous"}
	}
	return Actor{ID: claims.Subject, Type: "user", Role: claims.Role, AuthMethod: "jwt"}
}

// SystemActor identifies actions taken on behalf of another replica.
func SystemActor() Actor {
	return Actor{ID: "invalidation-listener", Type: actorSystem}
}

// SourceFromRequest extracts the client address and user agent.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}
	return Source{IPAddress: ip, UserAgent: r.UserAgent()}
}
