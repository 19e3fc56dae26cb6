// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

//go:build integration

package events

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/testinfra"
)

func TestNATSBus_FleetInvalidation(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	natsC, err := testinfra.NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("Failed to start NATS: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, natsC)

	newReplica := func(id string) *Bus {
		bus, err := NewNATSBus(Config{URL: natsC.URL, InstanceID: id, Topic: "test.invalidate"}, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewNATSBus(%s) failed: %v", id, err)
		}
		t.Cleanup(func() { bus.Close() }) //nolint:errcheck
		return bus
	}
	a, b, c := newReplica("a"), newReplica("b"), newReplica("c")

	targetB, targetC := newFakeInvalidator(0), newFakeInvalidator(0)
	startListener(t, b, targetB)
	startListener(t, c, targetC)
	targetA := newFakeInvalidator(0)
	startListener(t, a, targetA)

	// Subscriptions are registered asynchronously on the server.
	time.Sleep(200 * time.Millisecond)

	if _, err := a.PublishInvalidation(ctx, "integration"); err != nil {
		t.Fatalf("PublishInvalidation failed: %v", err)
	}

	waitApplied(t, targetB)
	waitApplied(t, targetC)

	time.Sleep(200 * time.Millisecond)
	if calls := targetA.calls.Load(); calls != 0 {
		t.Errorf("Publisher should skip its own event, got %d calls", calls)
	}
}
