// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package audit records maintenance actions for later review.
//
// Every cache invalidation, whether requested over HTTP or received from
// another replica, and every authorization denial on a maintenance route
// becomes an Event. Events are written asynchronously to a bounded Store and
// optionally mirrored to the structured log.
//
// # Usage
//
//	store := audit.NewMemoryStore(1000)
//	auditor := audit.NewLogger(store, audit.DefaultConfig(), logger)
//	defer auditor.Close()
//
//	auditor.LogInvalidation(ctx, audit.ActorFromContext(ctx), audit.SourceFromRequest(r),
//	    audit.Invalidation{Trigger: "manual", Reason: "catalog refresh", Dropped: 42})
//
// Remote invalidations are recorded by wrapping the pipeline passed to the
// event listener:
//
//	listener := events.NewListener(bus, audit.NewInvalidator(pipeline, auditor), logger)
//
// # Queries
//
// Query returns the most recent events first. The memory store drops the
// oldest tenth of its events when it reaches capacity.
package audit
