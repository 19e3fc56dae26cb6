// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/watchnext/internal/api"
	"github.com/tomtom215/watchnext/internal/cache"
	"github.com/tomtom215/watchnext/internal/validation"
)

func newCacheCommand(opts *options) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Catalog lookup cache maintenance",
	}

	cacheCmd.AddCommand(newCacheInvalidateCommand(opts))
	cacheCmd.AddCommand(newCacheStatsCommand(opts))

	return cacheCmd
}

func newCacheInvalidateCommand(opts *options) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Clear the feature, poster and detail caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var result api.InvalidationResult
			if _, err := opts.client().do(ctx, http.MethodPost, "/api/v1/cache/invalidate",
				validation.InvalidateRequest{Reason: reason}, &result); err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Dropped %d cached lookups (scope %s)\n", result.Dropped, result.Scope)
			if result.Published {
				fmt.Fprintf(out, "Invalidation event %s published to other instances\n", result.EventID)
			} else {
				fmt.Fprintln(out, "Invalidation was not published to other instances")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with the invalidation event")
	return cmd
}

func newCacheStatsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache hit and entry counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var stats api.CacheStatsResponse
			if _, err := opts.client().do(ctx, http.MethodGet, "/api/v1/cache/stats", nil, &stats); err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, stats)
			}

			rows := [][]string{
				{"backend", stats.Backend},
				{"hits", strconv.FormatInt(stats.Hits, 10)},
				{"misses", strconv.FormatInt(stats.Misses, 10)},
				{"hit rate", strconv.FormatFloat(stats.HitRate*100, 'f', 1, 64) + "%"},
				{"invalidations", strconv.FormatInt(stats.Invalidations, 10)},
			}
			kinds := make([]string, 0, len(stats.Entries))
			for k := range stats.Entries {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			for _, k := range kinds {
				rows = append(rows, []string{"entries " + k, strconv.Itoa(stats.Entries[cache.Kind(k)])})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}
}
