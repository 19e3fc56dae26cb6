// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package main is the entry point for the WatchNext recommendation server.
//
// WatchNext answers "what should I watch next?" for a list of watched movie
// ids. It fetches genres and keywords for each watched movie from TMDB,
// scores a pre-built TF-IDF corpus by cosine similarity, and enriches the
// top candidates with posters, years, ratings and overviews.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, config.yaml and environment (Koanf v2)
//  2. Corpus: item table, vectorizer and TF-IDF matrix loaded into memory
//  3. Catalog: TMDB client with rate limiting, retries and a circuit breaker
//  4. Feature cache: in-memory LRU or BadgerDB
//  5. Pipeline: the recommendation state machine
//  6. Event bus (optional): fleet-wide cache invalidation over NATS
//  7. Authentication: JWT and casbin for maintenance routes (optional)
//  8. HTTP server and supervisor tree
//
// # Configuration
//
// The minimum environment for a local run:
//
//	export TMDB_API_KEY=your-tmdb-key
//	export CORPUS_ITEMS_PATH=./data/items.csv
//	export CORPUS_VECTORIZER_PATH=./data/vectorizer.json
//	export CORPUS_MATRIX_PATH=./data/matrix.json.gz
//	./watchnext-server
//
// Several replicas behind a load balancer share invalidations over NATS:
//
//	export EVENTS_BACKEND=nats
//	export NATS_URL=nats://nats:4222
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for SERVER_SHUTDOWN_TIMEOUT before the cache and the
// event bus are closed.
package main

import (
	"os"

	"github.com/tomtom215/watchnext/internal/config"
	"github.com/tomtom215/watchnext/internal/logging"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
	logging.Info().Msg("Server stopped")
}
