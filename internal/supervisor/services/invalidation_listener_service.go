// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package services

import (
	"context"
)

// ListenerRunner runs an event listener until the context ends. It is
// satisfied by *events.Listener.
type ListenerRunner interface {
	Run(ctx context.Context) error
}

// InvalidationListenerService supervises the cache invalidation listener.
// A subscription failure returns an error and suture restarts the service
// with backoff, so a broker outage heals without restarting the process.
type InvalidationListenerService struct {
	listener ListenerRunner
	name     string
}

// NewInvalidationListenerService wraps the listener for supervision.
func NewInvalidationListenerService(listener ListenerRunner) *InvalidationListenerService {
	return &InvalidationListenerService{
		listener: listener,
		name:     "invalidation-listener",
	}
}

// Serve implements suture.Service.
func (s *InvalidationListenerService) Serve(ctx context.Context) error {
	return s.listener.Run(ctx)
}

// String implements fmt.Stringer for logging.
func (s *InvalidationListenerService) String() string {
	return s.name
}
