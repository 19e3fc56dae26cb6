// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/corpus"
	"github.com/tomtom215/watchnext/internal/events"
	"github.com/tomtom215/watchnext/internal/recommend"
)

// fakeRecommender records calls and returns canned results.
type fakeRecommender struct {
	mu            sync.Mutex
	records       []recommend.Record
	recommendErr  error
	invalidateErr error
	dropped       int
	items         int
	gotIDs        []int
	invalidations []string
}

func newFakeRecommender() *fakeRecommender {
	return &fakeRecommender{
		records: []recommend.Record{
			{ID: 155, Title: "The Dark Knight", Poster: "https://image.tmdb.org/t/p/w500/dk.jpg", Year: "2008", Rating: 8.5, Overview: "Batman...."},
			{ID: 27205, Title: "Inception", Year: "2010", Rating: 8.4},
		},
		dropped: 7,
		items:   3,
	}
}

func (f *fakeRecommender) Recommend(_ context.Context, ids []int) (*recommend.Result, error) {
	f.mu.Lock()
	f.gotIDs = append([]int(nil), ids...)
	f.mu.Unlock()

	if len(ids) == 0 {
		return nil, &recommend.PipelineError{State: recommend.StateValidating, Kind: recommend.KindClientInput, Err: recommend.ErrNoIdentifiers}
	}
	if f.recommendErr != nil {
		return nil, f.recommendErr
	}
	return &recommend.Result{
		Records:  f.records,
		Metadata: recommend.Metadata{Watched: len(ids), WithFeatures: len(ids), Candidates: 20},
	}, nil
}

func (f *fakeRecommender) InvalidateCaches(_ context.Context, trigger string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations = append(f.invalidations, trigger)
	if f.invalidateErr != nil {
		return 0, f.invalidateErr
	}
	return f.dropped, nil
}

func (f *fakeRecommender) CacheStats() cache.Stats {
	return cache.Stats{
		Backend: "memory",
		Hits:    3,
		Misses:  1,
		Entries: map[cache.Kind]int{cache.KindFeatureText: 2, cache.KindPoster: 1, cache.KindDetail: 1},
	}
}

func (f *fakeRecommender) CorpusSummary() corpus.Summary {
	return corpus.Summary{Items: f.items, Terms: 12, NNZ: 30, LoadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

type fakePublisher struct {
	err     error
	reasons []string
}

func (p *fakePublisher) PublishInvalidation(_ context.Context, reason string) (*events.InvalidationEvent, error) {
	p.reasons = append(p.reasons, reason)
	if p.err != nil {
		return nil, p.err
	}
	return &events.InvalidationEvent{EventID: "evt-1", Origin: "replica-a", Scope: events.ScopeAll, Reason: reason}, nil
}

type fakeBreaker string

func (b fakeBreaker) State() string { return string(b) }

func newTestServer(t *testing.T, rec Recommender, opts ...HandlerOption) http.Handler {
	t.Helper()
	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	return NewRouter(RouterConfig{
		Handler:    NewHandler(rec, opts...),
		Middleware: NewChiMiddleware(mwCfg),
	}).Setup()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode envelope %q: %v", w.Body.String(), err)
	}
	return resp
}

func TestRecommendations_Success(t *testing.T) {
	t.Parallel()

	rec := newFakeRecommender()
	srv := newTestServer(t, rec)

	w := doRequest(t, srv, http.MethodPost, "/api/v1/recommendations", `{"watchedIds":[550,680]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool               `json:"success"`
		Data    []recommend.Record `json:"data"`
		Meta    APIMeta            `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("Expected success=true")
	}
	if len(resp.Data) != 2 || resp.Data[0].ID != 155 {
		t.Errorf("Expected two records starting with 155, got %+v", resp.Data)
	}
	if resp.Meta.Count == nil || *resp.Meta.Count != 2 {
		t.Errorf("Expected meta.count 2, got %v", resp.Meta.Count)
	}
	if resp.Meta.RequestID == "" {
		t.Error("Expected meta.request_id to be set")
	}
	if got := fmt.Sprint(rec.gotIDs); got != "[550 680]" {
		t.Errorf("Expected ids [550 680], got %s", got)
	}
}

func TestRecommendations_LongListReachesPipeline(t *testing.T) {
	t.Parallel()

	ids := make([]string, 600)
	for i := range ids {
		ids[i] = fmt.Sprint(i + 1)
	}
	body := `{"watchedIds":[` + strings.Join(ids, ",") + `]}`

	for _, path := range []string{"/api/v1/recommendations", "/recommend"} {
		rec := newFakeRecommender()
		srv := newTestServer(t, rec)

		w := doRequest(t, srv, http.MethodPost, path, body)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected status 200, got %d: %s", path, w.Code, w.Body.String())
		}
		if len(rec.gotIDs) != 600 {
			t.Errorf("%s: expected 600 ids passed to the pipeline, got %d", path, len(rec.gotIDs))
		}
	}
}

func TestRecommendations_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		body          string
		err           error
		wantStatus    int
		wantCode      string
		wantRetryable bool
	}{
		{"empty body", "", nil, http.StatusBadRequest, ErrCodeNoIdentifiers, false},
		{"empty list", `{"watchedIds":[]}`, nil, http.StatusBadRequest, ErrCodeNoIdentifiers, false},
		{"malformed json", `{"watchedIds":`, nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"string ids", `{"watchedIds":["550"]}`, nil, http.StatusBadRequest, ErrCodeBadRequest, false},
		{"negative id", `{"watchedIds":[550,-1]}`, nil, http.StatusBadRequest, ErrCodeValidationFailed, false},
		{
			"no feature data", `{"watchedIds":[1,2]}`,
			&recommend.PipelineError{State: recommend.StateGatheringFeatures, Kind: recommend.KindUpstreamUnavailable, Err: recommend.ErrNoFeatureData},
			http.StatusServiceUnavailable, ErrCodeUpstreamUnavailable, true,
		},
		{
			"too many identifiers", `{"watchedIds":[1]}`,
			&recommend.PipelineError{State: recommend.StateValidating, Kind: recommend.KindClientInput, Err: recommend.ErrTooManyIdentifiers},
			http.StatusBadRequest, ErrCodeTooManyIdentifiers, false,
		},
		{"unexpected failure", `{"watchedIds":[1]}`, errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := newFakeRecommender()
			rec.recommendErr = tt.err
			srv := newTestServer(t, rec)

			w := doRequest(t, srv, http.MethodPost, "/api/v1/recommendations", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			resp := decodeEnvelope(t, w)
			if resp.Success || resp.Error == nil {
				t.Fatalf("Expected error envelope, got %s", w.Body.String())
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, resp.Error.Code)
			}
			if resp.Error.Retryable != tt.wantRetryable {
				t.Errorf("Expected retryable %v, got %v", tt.wantRetryable, resp.Error.Retryable)
			}
		})
	}
}

func TestLegacyRecommend(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"no body", "", nil, http.StatusBadRequest, `{"error":"No movie IDs provided"}`},
		{"missing field", `{}`, nil, http.StatusBadRequest, `{"error":"No movie IDs provided"}`},
		{"empty list", `{"watchedIds":[]}`, nil, http.StatusBadRequest, `{"error":"No movie IDs provided"}`},
		{"garbage", `not json`, nil, http.StatusBadRequest, `{"error":"No movie IDs provided"}`},
		{
			"no feature data", `{"watchedIds":[1]}`,
			&recommend.PipelineError{State: recommend.StateGatheringFeatures, Kind: recommend.KindUpstreamUnavailable, Err: recommend.ErrNoFeatureData},
			http.StatusInternalServerError, `{"error":"Failed to fetch data for given IDs"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := newFakeRecommender()
			rec.recommendErr = tt.err
			srv := newTestServer(t, rec)

			w := doRequest(t, srv, http.MethodPost, "/recommend", tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := strings.TrimSpace(w.Body.String()); got != tt.wantBody {
				t.Errorf("Expected body %s, got %s", tt.wantBody, got)
			}
		})
	}
}

func TestLegacyRecommend_BareArray(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRecommender())
	w := doRequest(t, srv, http.MethodPost, "/recommend", `{"watchedIds":[550]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("Expected a bare JSON array, got %s", w.Body.String())
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	for _, key := range []string{"id", "title", "poster", "year", "rating", "overview"} {
		if _, ok := records[1][key]; !ok {
			t.Errorf("Expected key %q in legacy record", key)
		}
	}
}

func TestInvalidateCache(t *testing.T) {
	t.Parallel()

	rec := newFakeRecommender()
	pub := &fakePublisher{}
	srv := newTestServer(t, rec, WithPublisher(pub))

	w := doRequest(t, srv, http.MethodPost, "/api/v1/cache/invalidate", `{"reason":"tmdb data refresh"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data InvalidationResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	want := InvalidationResult{Dropped: 7, Scope: events.ScopeAll, Published: true, EventID: "evt-1"}
	if resp.Data != want {
		t.Errorf("Expected %+v, got %+v", want, resp.Data)
	}
	if len(rec.invalidations) != 1 || rec.invalidations[0] != recommend.TriggerManual {
		t.Errorf("Expected one manual invalidation, got %v", rec.invalidations)
	}
	if len(pub.reasons) != 1 || pub.reasons[0] != "tmdb data refresh" {
		t.Errorf("Expected reason to be published, got %v", pub.reasons)
	}
}

func TestInvalidateCache_Failures(t *testing.T) {
	t.Parallel()

	t.Run("publish failure still succeeds locally", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t, newFakeRecommender(), WithPublisher(&fakePublisher{err: errors.New("nats down")}))
		w := doRequest(t, srv, http.MethodPost, "/api/v1/cache/invalidate", "")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"published":false`) {
			t.Errorf("Expected published=false, got %s", w.Body.String())
		}
	})

	t.Run("cache failure", func(t *testing.T) {
		t.Parallel()
		rec := newFakeRecommender()
		rec.invalidateErr = errors.New("badger closed")
		w := doRequest(t, newTestServer(t, rec), http.MethodPost, "/api/v1/cache/invalidate", "")
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected status 500, got %d", w.Code)
		}
	})

	t.Run("reason too long", func(t *testing.T) {
		t.Parallel()
		body := fmt.Sprintf(`{"reason":%q}`, strings.Repeat("r", 201))
		w := doRequest(t, newTestServer(t, newFakeRecommender()), http.MethodPost, "/api/v1/cache/invalidate", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", w.Code)
		}
		if resp := decodeEnvelope(t, w); resp.Error.Code != ErrCodeValidationFailed {
			t.Errorf("Expected %s, got %s", ErrCodeValidationFailed, resp.Error.Code)
		}
	})
}

func TestLegacyClearCache(t *testing.T) {
	t.Parallel()

	w := doRequest(t, newTestServer(t, newFakeRecommender()), http.MethodPost, "/clear-cache", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"message":"Cache cleared successfully"}` {
		t.Errorf("Unexpected body %s", got)
	}

	rec := newFakeRecommender()
	rec.invalidateErr = errors.New("closed")
	w = doRequest(t, newTestServer(t, rec), http.MethodPost, "/clear-cache", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"error":"Failed to clear cache"}` {
		t.Errorf("Unexpected body %s", got)
	}
}

func TestCacheStatsAndCorpus(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRecommender())

	w := doRequest(t, srv, http.MethodGet, "/api/v1/cache/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var stats struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Failed to decode stats: %v", err)
	}
	if stats.Data["hit_rate"] != 0.75 {
		t.Errorf("Expected hit_rate 0.75, got %v", stats.Data["hit_rate"])
	}
	if stats.Data["backend"] != "memory" {
		t.Errorf("Expected backend memory, got %v", stats.Data["backend"])
	}

	w = doRequest(t, srv, http.MethodGet, "/api/v1/corpus", "")
	var summary struct {
		Data corpus.Summary `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode corpus summary: %v", err)
	}
	if summary.Data.Items != 3 || summary.Data.Terms != 12 || summary.Data.NNZ != 30 {
		t.Errorf("Unexpected summary %+v", summary.Data)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		items      int
		breaker    BreakerStateReporter
		wantStatus int
		wantState  string
	}{
		{"healthy", 3, fakeBreaker("closed"), http.StatusOK, StatusHealthy},
		{"breaker open", 3, fakeBreaker("open"), http.StatusOK, StatusDegraded},
		{"no breaker", 3, nil, http.StatusOK, StatusHealthy},
		{"empty corpus", 0, fakeBreaker("closed"), http.StatusServiceUnavailable, StatusNotReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := newFakeRecommender()
			rec.items = tt.items
			opts := []HandlerOption{WithVersion("1.2.3")}
			if tt.breaker != nil {
				opts = append(opts, WithBreaker(tt.breaker))
			}
			srv := newTestServer(t, rec, opts...)

			w := doRequest(t, srv, http.MethodGet, "/api/v1/health/ready", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), `"status":"`+tt.wantState+`"`) {
				t.Errorf("Expected status %s in %s", tt.wantState, w.Body.String())
			}
		})
	}

	w := doRequest(t, newTestServer(t, newFakeRecommender()), http.MethodGet, "/api/v1/health/live", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"alive":true`) {
		t.Errorf("Expected live probe to succeed, got %d %s", w.Code, w.Body.String())
	}
}
