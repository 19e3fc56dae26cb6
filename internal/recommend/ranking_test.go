// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/tomtom215/watchnext/internal/catalog"
	"github.com/tomtom215/watchnext/internal/corpus"
)

func mustTable(t *testing.T, ids ...int) *corpus.Table {
	t.Helper()
	items := make([]corpus.Item, len(ids))
	for i, id := range ids {
		items[i] = corpus.Item{ID: id, Title: "Title " + string(rune('A'+i))}
	}
	table, err := corpus.NewTable(items)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func TestRankOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scores []float64
		want   []int
	}{
		{"descending", []float64{0.1, 0.9, 0.5}, []int{1, 2, 0}},
		{"ties keep row order", []float64{0.5, 0.9, 0.5, 0.9}, []int{1, 3, 0, 2}},
		{"all zero", []float64{0, 0, 0}, []int{0, 1, 2}},
		{"negative scores last", []float64{-0.2, 0, 0.3}, []int{2, 1, 0}},
		{"empty", nil, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RankOrder(tt.scores); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCandidateWindow(t *testing.T) {
	t.Parallel()

	table := mustTable(t, 10, 20, 30, 40, 50)
	order := []int{4, 3, 2, 1, 0}
	watched := map[int]struct{}{40: {}, 20: {}}

	if got := CandidateWindow(order, table, watched, 2); !reflect.DeepEqual(got, []int{50, 30}) {
		t.Errorf("Expected [50 30], got %v", got)
	}
	if got := CandidateWindow(order, table, watched, 10); !reflect.DeepEqual(got, []int{50, 30, 10}) {
		t.Errorf("Expected [50 30 10], got %v", got)
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	table := mustTable(t, 1, 2, 3, 4)
	order := []int{3, 2, 1, 0}
	watched := map[int]struct{}{3: {}}
	enrichment := map[int]Enrichment{
		4: {
			Poster: catalog.Present("https://image.tmdb.org/t/p/w500/four.jpg"),
			Detail: catalog.Present(catalog.DetailRecord{ReleaseDate: "2008-07-18", VoteAverage: 8.5, Overview: "Short."}),
		},
		2: {
			Poster: catalog.Absent[string](),
			Detail: catalog.Present(catalog.DetailRecord{}),
		},
	}

	got := Assemble(order, table, watched, enrichment, 12)
	want := []Record{
		{ID: 4, Title: "Title D", Poster: "https://image.tmdb.org/t/p/w500/four.jpg", Year: "2008", Rating: 8.5, Overview: "Short...."},
		{ID: 2, Title: "Title B", Poster: "", Year: "Unknown", Rating: 0, Overview: ""},
		{ID: 1, Title: "Title A", Poster: "", Year: "Unknown", Rating: 0, Overview: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	if limited := Assemble(order, table, watched, nil, 2); len(limited) != 2 || limited[1].ID != 2 {
		t.Errorf("Expected two records ending with id 2, got %+v", limited)
	}
}

func TestAssemble_AllWatched(t *testing.T) {
	t.Parallel()

	table := mustTable(t, 1, 2)
	got := Assemble([]int{0, 1}, table, map[int]struct{}{1: {}, 2: {}}, nil, 12)
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
}

func TestTruncateOverview(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	unicodeLong := strings.Repeat("é", 151)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "A thriller.", "A thriller...."},
		{"exactly limit", strings.Repeat("y", 150), strings.Repeat("y", 150) + "..."},
		{"long", long, strings.Repeat("x", 150) + "..."},
		{"counts runes", unicodeLong, strings.Repeat("é", 150) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateOverview(tt.in)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if tt.in != "" && utf8.RuneCountInString(got) > OverviewRunes+3 {
				t.Errorf("Expected at most %d runes, got %d", OverviewRunes+3, utf8.RuneCountInString(got))
			}
		})
	}
}

func TestYearOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"1999-10-15", "1999"},
		{"2024", "2024"},
		{"", "Unknown"},
		{"-01-01", ""},
	}
	for _, tt := range tests {
		if got := YearOf(tt.in); got != tt.want {
			t.Errorf("YearOf(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
