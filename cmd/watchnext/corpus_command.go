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
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/watchnext/internal/corpus"
)

func newCorpusCommand(opts *options) *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Corpus inspection",
	}

	corpusCmd.AddCommand(newCorpusInspectCommand(opts))
	corpusCmd.AddCommand(newCorpusSummaryCommand(opts))

	return corpusCmd
}

// newCorpusInspectCommand loads corpus files locally, the same way the
// server does at startup.
func newCorpusInspectCommand(opts *options) *cobra.Command {
	var cfg corpus.Config

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Load corpus files locally and print their dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := corpus.Load(cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			return printSummary(cmd, opts, loaded.Summary())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.ItemsPath, "items", "", "Item table CSV")
	flags.StringVar(&cfg.VectorizerPath, "vectorizer", "", "Vectorizer vocabulary and idf JSON")
	flags.StringVar(&cfg.MatrixPath, "matrix", "", "TF-IDF matrix JSON (optionally gzipped)")
	flags.StringVar(&cfg.IDColumn, "id-column", "id", "Item table id column")
	flags.StringVar(&cfg.TitleColumn, "title-column", "original_title", "Item table title column")
	_ = cmd.MarkFlagRequired("items")
	_ = cmd.MarkFlagRequired("vectorizer")
	_ = cmd.MarkFlagRequired("matrix")

	return cmd
}

func newCorpusSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the corpus loaded by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			var summary corpus.Summary
			if _, err := opts.client().do(ctx, http.MethodGet, "/api/v1/corpus", nil, &summary); err != nil {
				return err
			}
			return printSummary(cmd, opts, summary)
		},
	}
}

func printSummary(cmd *cobra.Command, opts *options, s corpus.Summary) error {
	if opts.json {
		return writeJSON(cmd, s)
	}
	rows := [][]string{
		{"items", strconv.Itoa(s.Items)},
		{"terms", strconv.Itoa(s.Terms)},
		{"non-zero weights", strconv.Itoa(s.NNZ)},
		{"loaded at", s.LoadedAt.UTC().Format(time.RFC3339)},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Corpus", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	return nil
}
