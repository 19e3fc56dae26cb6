// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/watchnext/internal/recommend"
	"github.com/tomtom215/watchnext/internal/validation"
)

func newRecommendCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <movie-id>...",
		Short: "Recommend movies similar to the watched ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var records []recommend.Record
			meta, err := opts.client().do(ctx, http.MethodPost, "/api/v1/recommendations",
				validation.RecommendRequest{WatchedIDs: ids}, &records)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, records)
			}

			rows := make([][]string, 0, len(records))
			for i, rec := range records {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					strconv.Itoa(rec.ID),
					rec.Title,
					rec.Year,
					strconv.FormatFloat(rec.Rating, 'f', 1, 64),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "ID", "Title", "Year", "Rating"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
			))
			if meta != nil && meta.WithFeatures != nil && meta.Watched != nil {
				fmt.Fprintf(out, "%d of %d watched ids had catalog features (%d ms)\n",
					*meta.WithFeatures, *meta.Watched, meta.DurationMs)
			}
			return nil
		},
	}
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		id, err := strconv.Atoi(arg)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid movie id %q", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
