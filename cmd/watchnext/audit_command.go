// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/watchnext/internal/audit"
)

func newAuditCommand(opts *options) *cobra.Command {
	var (
		limit     int
		eventType string
		outcome   string
		actor     string
		since     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent maintenance actions (admin token required)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if eventType != "" {
				q.Set("type", eventType)
			}
			if outcome != "" {
				q.Set("outcome", outcome)
			}
			if actor != "" {
				q.Set("actor", actor)
			}
			if since > 0 {
				q.Set("since", time.Now().Add(-since).UTC().Format(time.RFC3339))
			}
			path := "/api/v1/audit"
			if len(q) > 0 {
				path += "?" + q.Encode()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var found []audit.Event
			if _, err := opts.client().do(ctx, http.MethodGet, path, nil, &found); err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, found)
			}

			rows := make([][]string, 0, len(found))
			for _, e := range found {
				rows = append(rows, []string{
					e.Timestamp.UTC().Format(time.RFC3339),
					string(e.Type),
					string(e.Outcome),
					e.Actor.ID,
					e.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Time", "Type", "Outcome", "Actor", "Description"}, rows, nil))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&limit, "limit", 50, "Maximum number of events")
	flags.StringVar(&eventType, "type", "", "Event type (cache.invalidated, cache.remote_invalidated, authz.denied)")
	flags.StringVar(&outcome, "outcome", "", "success or failure")
	flags.StringVar(&actor, "actor", "", "Actor id")
	flags.DurationVar(&since, "since", 0, "Only events newer than this duration")

	return cmd
}
