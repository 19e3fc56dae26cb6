// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package recommend

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/watchnext/internal/corpus"
)

const (
	// OverviewRunes is how much of an overview a record keeps.
	OverviewRunes = 150

	unknownYear = "Unknown"
)

// RankOrder returns row indices by descending score. Equal scores keep
// corpus row order.
func RankOrder(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}

// CandidateWindow returns the ids of the first n unwatched items in order.
func CandidateWindow(order []int, items *corpus.Table, watched map[int]struct{}, n int) []int {
	ids := make([]int, 0, n)
	for _, row := range order {
		if len(ids) == n {
			break
		}
		id := items.At(row).ID
		if _, seen := watched[id]; seen {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Assemble builds up to limit records in rank order, skipping watched items.
// Missing enrichment falls back to an empty poster, "Unknown" year, zero
// rating and empty overview.
func Assemble(order []int, items *corpus.Table, watched map[int]struct{}, enrichment map[int]Enrichment, limit int) []Record {
	records := make([]Record, 0, limit)
	for _, row := range order {
		if len(records) == limit {
			break
		}
		item := items.At(row)
		if _, seen := watched[item.ID]; seen {
			continue
		}

		rec := Record{
			ID:    item.ID,
			Title: item.Title,
			Year:  unknownYear,
		}
		if e, ok := enrichment[item.ID]; ok {
			rec.Poster = e.Poster.OrElse("")
			if detail, ok := e.Detail.Get(); ok {
				rec.Year = YearOf(detail.ReleaseDate)
				rec.Rating = detail.VoteAverage
				rec.Overview = TruncateOverview(detail.Overview)
			}
		}
		records = append(records, rec)
	}
	return records
}

// TruncateOverview keeps the first OverviewRunes runes and appends "...".
// An empty overview stays empty.
func TruncateOverview(s string) string {
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) > OverviewRunes {
		runes := []rune(s)
		s = string(runes[:OverviewRunes])
	}
	return s + "..."
}

// YearOf returns the text before the first '-' of a release date, or
// "Unknown" when the date is empty.
func YearOf(releaseDate string) string {
	if releaseDate == "" {
		return unknownYear
	}
	year, _, _ := strings.Cut(releaseDate, "-")
	return year
}
