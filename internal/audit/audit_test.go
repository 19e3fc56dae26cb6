// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package audit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/auth"
	"github.com/tomtom215/watchnext/internal/events"
)

// waitForLen polls the store until it holds n events.
func waitForLen(t *testing.T, store *MemoryStore, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d events in store, got %d", n, store.Len())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLogger_LogInvalidation(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: true, BufferSize: 10}, zerolog.Nop())
	defer logger.Close()

	actor := Actor{ID: "ops", Type: "user", Role: "operator", AuthMethod: "jwt"}
	logger.LogInvalidation(context.Background(), actor, Source{IPAddress: "10.0.0.1"},
		Invalidation{Trigger: "manual", Reason: "catalog refresh", Dropped: 42}, nil)
	waitForLen(t, store, 1)

	got, err := logger.Query(context.Background(), DefaultQueryFilter())
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	e := got[0]
	if e.Type != EventTypeCacheInvalidated || e.Outcome != OutcomeSuccess || e.Actor.ID != "ops" {
		t.Errorf("Unexpected event %+v", e)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Error("Expected ID and timestamp to be filled in")
	}

	var inv Invalidation
	if err := json.Unmarshal(e.Metadata, &inv); err != nil {
		t.Fatalf("Metadata is not an Invalidation: %v", err)
	}
	if inv.Dropped != 42 || inv.Reason != "catalog refresh" {
		t.Errorf("Unexpected metadata %+v", inv)
	}
}

func TestLogger_FailedInvalidation(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, nil, zerolog.Nop())

	logger.LogInvalidation(context.Background(), SystemActor(), Source{Instance: "replica-a"},
		Invalidation{Trigger: "event"}, errors.New("badger closed"))

	// Close drains the buffer.
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Expected 1 event after Close, got %d", store.Len())
	}

	got, _ := store.Query(context.Background(), QueryFilter{})
	if got[0].Type != EventTypeRemoteInvalidation {
		t.Errorf("Expected type %s, got %s", EventTypeRemoteInvalidation, got[0].Type)
	}
	if got[0].Outcome != OutcomeFailure || got[0].Severity != SeverityError {
		t.Errorf("Expected failed error event, got %s/%s", got[0].Outcome, got[0].Severity)
	}

	// Logging after Close is a no-op.
	logger.LogAuthzDenied(context.Background(), Actor{ID: "x"}, Source{}, "/api/v1/audit", "read")
	if err := logger.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected no events after Close, got %d", store.Len())
	}
}

func TestLogger_Disabled(t *testing.T) {
	store := NewMemoryStore(100)
	logger := NewLogger(store, &Config{Enabled: false, BufferSize: 10}, zerolog.Nop())

	logger.LogAuthzDenied(context.Background(), Actor{ID: "viewer1"}, Source{}, "/clear-cache", "write")
	_ = logger.Close()

	if store.Len() != 0 {
		t.Errorf("Expected 0 events when disabled, got %d", store.Len())
	}
}

func TestMemoryStore_Query(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	fixtures := []Event{
		{ID: "1", Timestamp: base, Type: EventTypeCacheInvalidated, Outcome: OutcomeSuccess, Actor: Actor{ID: "ops"}},
		{ID: "2", Timestamp: base.Add(time.Minute), Type: EventTypeAuthzDenied, Outcome: OutcomeFailure, Actor: Actor{ID: "viewer1"}},
		{ID: "3", Timestamp: base.Add(2 * time.Minute), Type: EventTypeRemoteInvalidation, Outcome: OutcomeSuccess, Actor: SystemActor()},
		{ID: "4", Timestamp: base.Add(3 * time.Minute), Type: EventTypeCacheInvalidated, Outcome: OutcomeFailure, Actor: Actor{ID: "ops"}},
	}
	for i := range fixtures {
		if err := store.Save(ctx, &fixtures[i]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	since := base.Add(90 * time.Second)
	tests := []struct {
		name   string
		filter QueryFilter
		want   []string
	}{
		{"all recent first", QueryFilter{}, []string{"4", "3", "2", "1"}},
		{"limit", QueryFilter{Limit: 2}, []string{"4", "3"}},
		{"by type", QueryFilter{Types: []EventType{EventTypeCacheInvalidated}}, []string{"4", "1"}},
		{"by outcome", QueryFilter{Outcomes: []Outcome{OutcomeFailure}}, []string{"4", "2"}},
		{"by actor", QueryFilter{ActorID: "viewer1"}, []string{"2"}},
		{"since", QueryFilter{StartTime: &since}, []string{"4", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			ids := make([]string, len(got))
			for i, e := range got {
				ids[i] = e.ID
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, ids)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("Expected %v, got %v", tt.want, ids)
				}
			}
		})
	}

	count, err := store.Count(ctx, QueryFilter{Types: []EventType{EventTypeCacheInvalidated}, Limit: 1})
	if err != nil || count != 2 {
		t.Errorf("Expected count 2 ignoring limit, got %d (err %v)", count, err)
	}
}

func TestMemoryStore_Capacity(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		_ = store.Save(ctx, &Event{ID: string(rune('a' + i))})
	}
	if store.Len() > 10 {
		t.Errorf("Expected at most 10 events, got %d", store.Len())
	}
	got, _ := store.Query(ctx, QueryFilter{Limit: 1})
	if got[0].ID != string(rune('a'+24)) {
		t.Errorf("Expected newest event kept, got %q", got[0].ID)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	ctx := context.Background()
	now := time.Now()
	_ = store.Save(ctx, &Event{ID: "old", Timestamp: now.Add(-48 * time.Hour)})
	_ = store.Save(ctx, &Event{ID: "new", Timestamp: now})

	removed, err := store.Delete(ctx, now.Add(-24*time.Hour))
	if err != nil || removed != 1 {
		t.Fatalf("Expected 1 removed, got %d (err %v)", removed, err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 remaining, got %d", store.Len())
	}
}

func TestActorAndSource(t *testing.T) {
	t.Parallel()

	if a := ActorFromContext(context.Background()); a.Type != "anonymous" {
		t.Errorf("Expected anonymous actor, got %+v", a)
	}

	claims := &auth.Claims{Role: "admin"}
	claims.Subject = "root-ops"
	a := ActorFromContext(auth.ContextWithClaims(context.Background(), claims))
	if a.ID != "root-ops" || a.Role != "admin" || a.AuthMethod != "jwt" {
		t.Errorf("Unexpected actor %+v", a)
	}

	r := httptest.NewRequest("POST", "/api/v1/cache/invalidate", nil)
	r.RemoteAddr = "192.0.2.7:5555"
	r.Header.Set("User-Agent", "watchnext-cli")
	s := SourceFromRequest(r)
	if s.IPAddress != "192.0.2.7" || s.UserAgent != "watchnext-cli" {
		t.Errorf("Unexpected source %+v", s)
	}
}

type countingInvalidator struct {
	dropped int
	err     error
}

func (c *countingInvalidator) InvalidateCaches(context.Context, string) (int, error) {
	return c.dropped, c.err
}

func TestInvalidator(t *testing.T) {
	store := NewMemoryStore(10)
	logger := NewLogger(store, nil, zerolog.Nop())

	inv := NewInvalidator(&countingInvalidator{dropped: 9}, logger)
	ctx := events.ContextWithEvent(context.Background(),
		&events.InvalidationEvent{EventID: "evt-1", Origin: "replica-a", Scope: events.ScopeAll, Reason: "deploy"})

	dropped, err := inv.InvalidateCaches(ctx, events.TriggerEvent)
	if err != nil || dropped != 9 {
		t.Fatalf("Expected 9 dropped, got %d (err %v)", dropped, err)
	}
	_ = logger.Close()

	got, _ := store.Query(context.Background(), QueryFilter{})
	if len(got) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(got))
	}
	if got[0].Type != EventTypeRemoteInvalidation || got[0].Source.Instance != "replica-a" {
		t.Errorf("Unexpected event %+v", got[0])
	}
	var meta Invalidation
	_ = json.Unmarshal(got[0].Metadata, &meta)
	if meta.EventID != "evt-1" || meta.Reason != "deploy" || meta.Dropped != 9 {
		t.Errorf("Unexpected metadata %+v", meta)
	}
}
