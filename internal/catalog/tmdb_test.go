// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const movieJSON = `{
	"id": 550,
	"title": "Fight Club",
	"original_title": "Fight Club",
	"overview": "A ticking-time-bomb insomniac...",
	"tagline": "Mischief. Mayhem. Soap.",
	"release_date": "1999-10-15",
	"vote_average": 8.4,
	"poster_path": "/pB8BM7pdSp6B6Ih7QZ4DrQ3PmJK.jpg",
	"genres": [{"id": 18, "name": "Drama"}, {"id": 53, "name": "Thriller"}]
}`

const keywordsJSON = `{"id": 550, "keywords": [{"id": 825, "name": "support group"}, {"id": 851, "name": "dual identity"}]}`

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithRateLimit(0, 0),
		WithRetry(3, time.Millisecond),
		WithLogger(zerolog.Nop()),
	}, opts...)
	client, err := NewClient("test-key", url, "en-US", opts...)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("  ", "", ""); err == nil {
		t.Fatal("Expected error for empty api key")
	}

	client, err := NewClient("key", "", "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if client.baseURL != DefaultBaseURL {
		t.Errorf("Expected default base URL %q, got %q", DefaultBaseURL, client.baseURL)
	}
}

func TestClient_GetMovie(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550" {
			t.Errorf("Expected path /movie/550, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("Expected api_key test-key, got %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en-US" {
			t.Errorf("Expected language en-US, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(movieJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	movie, err := client.GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("GetMovie failed: %v", err)
	}
	if movie.Title != "Fight Club" {
		t.Errorf("Expected title Fight Club, got %q", movie.Title)
	}
	if len(movie.Genres) != 2 {
		t.Errorf("Expected 2 genres, got %d", len(movie.Genres))
	}
	if movie.VoteAverage != 8.4 {
		t.Errorf("Expected vote average 8.4, got %v", movie.VoteAverage)
	}
}

func TestClient_GetKeywords(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/550/keywords" {
			t.Errorf("Expected path /movie/550/keywords, got %s", r.URL.Path)
		}
		if r.URL.Query().Has("language") {
			t.Error("Expected no language parameter on keyword calls")
		}
		_, _ = w.Write([]byte(keywordsJSON))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	kw, err := client.GetKeywords(context.Background(), 550)
	if err != nil {
		t.Fatalf("GetKeywords failed: %v", err)
	}
	if len(kw.Keywords) != 2 || kw.Keywords[0].Name != "support group" {
		t.Errorf("Unexpected keywords: %+v", kw.Keywords)
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(t *testing.T, err error)
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{"status_code":34}`,
			checkFn: func(t *testing.T, err error) {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("Expected ErrNotFound, got %v", err)
				}
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"status_code":7}`,
			checkFn: func(t *testing.T, err error) {
				var se *StatusError
				if !errors.As(err, &se) {
					t.Fatalf("Expected StatusError, got %v", err)
				}
				if se.Code != http.StatusUnauthorized {
					t.Errorf("Expected code 401, got %d", se.Code)
				}
			},
		},
		{
			name:   "malformed body",
			status: http.StatusOK,
			body:   `{"id": "not-a-number"`,
			checkFn: func(t *testing.T, err error) {
				if err == nil {
					t.Error("Expected decode error")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(t, server.URL).GetMovie(context.Background(), 1)
			tt.checkFn(t, err)
		})
	}
}

func TestClient_RetriesOn429(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(movieJSON))
	}))
	defer server.Close()

	movie, err := newTestClient(t, server.URL).GetMovie(context.Background(), 550)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if movie.ID != 550 {
		t.Errorf("Expected id 550, got %d", movie.ID)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
}

func TestClient_RateLimitExhausted(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, WithRetry(2, time.Millisecond)).GetMovie(context.Background(), 1)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Expected ErrRateLimited, got %v", err)
	}
	if got := attempts.Load(); got != 3 {
		t.Errorf("Expected 3 attempts (1 + 2 retries), got %d", got)
	}
}

func TestClient_TimeoutBoundsCall(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient(t, server.URL, WithTimeout(50*time.Millisecond))
	start := time.Now()
	if _, err := client.GetMovie(context.Background(), 1); err == nil {
		t.Fatal("Expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Expected call to be bounded by timeout, took %v", elapsed)
	}
}
