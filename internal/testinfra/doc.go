// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package testinfra provides container-backed infrastructure for integration
// tests.
//
// It uses testcontainers-go to start real services in Docker. Everything in
// this package is behind the integration build tag:
//
//	go test -tags integration ./...
//
// # NATS Container
//
// NATSContainer runs a NATS server for exercising the invalidation bus across
// two replicas:
//
//	func TestFleetInvalidation(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    natsC, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, natsC)
//
//	    bus, err := events.NewNATSBus(events.Config{URL: natsC.URL}, zerolog.Nop())
//	    // ...
//	}
//
// # CI Considerations
//
// These tests need Docker and network access for the first image pull. They
// skip when Docker is unavailable.
package testinfra
