// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package config loads service configuration with Koanf v2.
//
// Sources are layered, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
//     /etc/watchnext/config.yaml
//  3. Environment variables from an explicit mapping table
//
// Only mapped environment variables are read, so unrelated variables in the
// process environment never leak into configuration. Slice settings such as
// CORS_ORIGINS accept comma-separated values.
//
// # Sections
//
//   - server: listen address and HTTP timeouts
//   - tmdb: catalog API credentials, rate limit, retries, circuit breaker
//   - cache: feature cache backend, capacity, TTL, sweep interval
//   - corpus: item table and TF-IDF artifact paths
//   - pipeline: worker count, result sizes, request timeout
//   - events: fleet-wide invalidation bus (memory or NATS)
//   - security: maintenance auth mode, JWT, Casbin, CORS, rate limiting
//   - logging: zerolog level and format
//   - supervisor: suture failure and shutdown tuning
//
// # Minimal Environment
//
//	TMDB_API_KEY=...
//	CORPUS_ITEMS_PATH=/data/movies.csv
//	CORPUS_VECTORIZER_PATH=/data/vectorizer.json
//	CORPUS_MATRIX_PATH=/data/matrix.json.gz
//
// LoadWithKoanf validates the result before returning it.
package config
