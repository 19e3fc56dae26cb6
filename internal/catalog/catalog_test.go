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
	"testing"

	"github.com/rs/zerolog"
)

func newFightClubAPI() *fakeAPI {
	return &fakeAPI{
		movies: map[int]*Movie{
			550: {
				ID:          550,
				Title:       "Fight Club",
				Overview:    "An insomniac office worker...",
				Tagline:     "Mischief. Mayhem. Soap.",
				ReleaseDate: "1999-10-15",
				VoteAverage: 8.4,
				PosterPath:  "/fc.jpg",
				Genres:      []Genre{{Name: "Drama"}},
			},
			13: {ID: 13, Title: "Forrest Gump", ReleaseDate: "1994-06-23"},
		},
		keywords: map[int]*Keywords{
			550: {ID: 550, Keywords: []Keyword{{Name: "split personality"}}},
		},
	}
}

func TestService_FetchFeatureText(t *testing.T) {
	t.Parallel()

	svc := NewService(newFightClubAPI(), "", zerolog.Nop())

	got := svc.FetchFeatureText(context.Background(), 550)
	want := "Drama splitpersonality Mischief.Mayhem.Soap. 1999 1990s"
	if !got.OK || got.Value != want {
		t.Errorf("Expected present %q, got %+v", want, got)
	}

	if missing := svc.FetchFeatureText(context.Background(), 999); missing.OK {
		t.Errorf("Expected absent for unknown id, got %+v", missing)
	}
}

func TestService_FetchFeatureText_KeywordFailure(t *testing.T) {
	t.Parallel()

	api := newFightClubAPI()
	api.keywordErr = errors.New("keywords unavailable")
	svc := NewService(api, "", zerolog.Nop())

	got := svc.FetchFeatureText(context.Background(), 550)
	want := "Drama  Mischief.Mayhem.Soap. 1999 1990s"
	if !got.OK || got.Value != want {
		t.Errorf("Expected present %q, got %+v", want, got)
	}
}

func TestService_DetailFailureSkipsKeywords(t *testing.T) {
	t.Parallel()

	api := newFightClubAPI()
	api.movieErr = errors.New("upstream 500")
	svc := NewService(api, "", zerolog.Nop())

	if got := svc.FetchFeatureText(context.Background(), 550); got.OK {
		t.Errorf("Expected absent, got %+v", got)
	}
	if api.keywordCall.Load() != 0 {
		t.Errorf("Expected no keyword call after detail failure, got %d", api.keywordCall.Load())
	}
}

func TestService_FetchPosterReference(t *testing.T) {
	t.Parallel()

	svc := NewService(newFightClubAPI(), "https://img.example/w92", zerolog.Nop())

	if got := svc.FetchPosterReference(context.Background(), 550); got.OrElse("") != "https://img.example/w92/fc.jpg" {
		t.Errorf("Unexpected poster %+v", got)
	}
	if got := svc.FetchPosterReference(context.Background(), 13); got.OK {
		t.Errorf("Expected absent poster for empty path, got %+v", got)
	}
	if got := svc.FetchPosterReference(context.Background(), 999); got.OK {
		t.Errorf("Expected absent poster for unknown id, got %+v", got)
	}
}

func TestService_FetchDetailRecord(t *testing.T) {
	t.Parallel()

	svc := NewService(newFightClubAPI(), "", zerolog.Nop())

	rec, ok := svc.FetchDetailRecord(context.Background(), 550).Get()
	if !ok {
		t.Fatal("Expected detail record")
	}
	if rec.ReleaseDate != "1999-10-15" || rec.VoteAverage != 8.4 || rec.Title != "Fight Club" {
		t.Errorf("Unexpected record %+v", rec)
	}

	if got := svc.FetchDetailRecord(context.Background(), 999); got.OK {
		t.Errorf("Expected absent record, got %+v", got)
	}
}

func TestService_CanceledContextIsAbsent(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(newFightClubAPI(), "", zerolog.Nop())

	if got := svc.FetchFeatureText(ctx, 550); got.OK {
		t.Errorf("Expected absent on canceled context, got %+v", got)
	}
}

func TestService_OverHTTPWithBreaker(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/movie/550":
			_, _ = w.Write([]byte(movieJSON))
		case "/movie/550/keywords":
			_, _ = w.Write([]byte(keywordsJSON))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	svc := NewService(NewBreakerClient(client, DefaultBreakerSettings(), zerolog.Nop()), "", zerolog.Nop())

	got := svc.FetchFeatureText(context.Background(), 550)
	want := "Drama Thriller supportgroup dualidentity Mischief.Mayhem.Soap. 1999 1990s"
	if got.Value != want {
		t.Errorf("Expected %q, got %q", want, got.Value)
	}
	if got := svc.FetchDetailRecord(context.Background(), 1); got.OK {
		t.Errorf("Expected absent on 500, got %+v", got)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if v, ok := Present(3).Get(); !ok || v != 3 {
		t.Errorf("Expected (3, true), got (%d, %v)", v, ok)
	}
	if v := Absent[int]().OrElse(7); v != 7 {
		t.Errorf("Expected fallback 7, got %d", v)
	}
}
