// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package catalog

import (
	"strconv"
	"strings"
)

const unknownToken = "unknown"

// BuildFeatureText renders the text the similarity engine scores:
//
//	"{genres} {keywords} {tagline} {year} {decade}"
//
// Multi-word genre names, keywords and the tagline have their spaces removed
// so each one stays a single token. Empty segments leave their separator in
// place, and only the outer whitespace is trimmed.
func BuildFeatureText(movie *Movie, keywords []Keyword) string {
	if movie == nil {
		return ""
	}

	genres := make([]string, 0, len(movie.Genres))
	for _, g := range movie.Genres {
		genres = append(genres, squash(g.Name))
	}
	tags := make([]string, 0, len(keywords))
	for _, k := range keywords {
		tags = append(tags, squash(k.Name))
	}

	year, decade := yearAndDecade(movie.ReleaseDate)

	text := strings.Join(genres, " ") + " " +
		strings.Join(tags, " ") + " " +
		squash(movie.Tagline) + " " +
		year + " " + decade
	return strings.TrimSpace(text)
}

// yearAndDecade returns the release year and "1990s"-style decade. A date
// with a non-numeric year keeps the raw year text with an unknown decade.
func yearAndDecade(releaseDate string) (year, decade string) {
	if releaseDate == "" {
		return unknownToken, unknownToken
	}
	year, _, _ = strings.Cut(releaseDate, "-")
	n, err := strconv.Atoi(year)
	if err != nil {
		return year, unknownToken
	}
	return year, strconv.Itoa(floorDiv(n, 10)*10) + "s"
}

// floorDiv is integer division rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func squash(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// PosterURL joins the image base with a poster path, or returns "" when the
// path is empty.
func PosterURL(imageBase, posterPath string) string {
	if posterPath == "" {
		return ""
	}
	return strings.TrimRight(imageBase, "/") + "/" + strings.TrimLeft(posterPath, "/")
}
