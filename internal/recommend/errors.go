// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrNoIdentifiers is returned when a request names no items.
	ErrNoIdentifiers = errors.New("no identifiers provided")

	// ErrTooManyIdentifiers is returned when a request exceeds MaxWatched.
	ErrTooManyIdentifiers = errors.New("too many identifiers")

	// ErrNoFeatureData is returned when no watched item yielded feature text.
	ErrNoFeatureData = errors.New("no feature data obtainable for given identifiers")
)

// ErrorKind separates bad requests from upstream outages.
type ErrorKind int

const (
	// KindClientInput means the request itself is unusable.
	KindClientInput ErrorKind = iota + 1
	// KindUpstreamUnavailable means the catalog produced nothing usable.
	// Retrying later may succeed.
	KindUpstreamUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindClientInput:
		return "client_input"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	default:
		return "unknown"
	}
}

// PipelineError records the state in which a request was rejected.
type PipelineError struct {
	State State
	Kind  ErrorKind
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("recommend %s: %v", e.State, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err came from an upstream outage.
func IsRetryable(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Kind == KindUpstreamUnavailable
}

// IsClientInput reports whether err was caused by the request.
func IsClientInput(err error) bool {
	var pe *PipelineError
	return errors.As(err, &pe) && pe.Kind == KindClientInput
}
