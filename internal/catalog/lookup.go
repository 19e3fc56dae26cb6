// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package catalog

// Lookup is the result of a catalog operation that may have no value.
// Absent results are ordinary values, never errors.
type Lookup[T any] struct {
	Value T    `json:"value"`
	OK    bool `json:"ok"`
}

// Present wraps v as a found result.
func Present[T any](v T) Lookup[T] {
	return Lookup[T]{Value: v, OK: true}
}

// Absent returns the empty result for T.
func Absent[T any]() Lookup[T] {
	return Lookup[T]{}
}

// Get returns the value and whether it was found.
func (l Lookup[T]) Get() (T, bool) {
	return l.Value, l.OK
}

// OrElse returns the value when present, fallback otherwise.
func (l Lookup[T]) OrElse(fallback T) T {
	if l.OK {
		return l.Value
	}
	return fallback
}
