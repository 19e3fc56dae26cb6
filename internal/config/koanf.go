// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/watchnext/config.yaml",
	"/etc/watchnext/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		TMDB: TMDBConfig{
			APIKey:         "",
			BaseURL:        "https://api.themoviedb.org/3",
			ImageBaseURL:   "https://image.tmdb.org/t/p/w500",
			Language:       "en-US",
			Timeout:        5 * time.Second,
			RateLimit:      40,
			Burst:          20,
			MaxRetries:     3,
			RetryBaseDelay: 500 * time.Millisecond,
			Breaker: BreakerConfig{
				Enabled:      true,
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  10,
				FailureRatio: 0.6,
			},
		},
		Cache: CacheConfig{
			Backend:         "memory",
			CapacityPerKind: 10000,
			TTL:             6 * time.Hour,
			Path:            "",
			SweepInterval:   10 * time.Minute,
		},
		Corpus: CorpusConfig{
			IDColumn:    "id",
			TitleColumn: "original_title",
		},
		Pipeline: PipelineConfig{
			Workers:              8,
			CandidateWindow:      20,
			MaxResults:           12,
			MaxWatched:           500,
			RequestTimeout:       20 * time.Second,
			InvalidatePerRequest: false,
		},
		Events: EventsConfig{
			Enabled:       true,
			Backend:       "memory",
			URL:           "nats://127.0.0.1:4222",
			Topic:         "watchnext.cache.invalidate",
			MaxReconnects: -1,
			ReconnectWait: 2 * time.Second,
		},
		Security: SecurityConfig{
			AuthMode:          "none",
			TokenTTL:          time.Hour,
			TokenIssuer:       "watchnext",
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			Casbin: CasbinConfig{
				DefaultRole:    "viewer",
				ReloadInterval: 30 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:     true,
			Capacity:    1000,
			BufferSize:  256,
			LogToStdout: false,
		},
	}
}

// LoadWithKoanf loads and validates configuration from defaults, the
// optional config file and the environment.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to config paths.
var envMappings = map[string]string{
	// Server
	"http_host":          "server.host",
	"http_port":          "server.port",
	"http_read_timeout":  "server.read_timeout",
	"http_write_timeout": "server.write_timeout",
	"http_idle_timeout":  "server.idle_timeout",
	"shutdown_timeout":   "server.shutdown_timeout",
	"environment":        "server.environment",

	// TMDB
	"tmdb_api_key":               "tmdb.api_key",
	"tmdb_base_url":              "tmdb.base_url",
	"tmdb_image_base_url":        "tmdb.image_base_url",
	"tmdb_language":              "tmdb.language",
	"tmdb_timeout":               "tmdb.timeout",
	"tmdb_rate_limit":            "tmdb.rate_limit",
	"tmdb_burst":                 "tmdb.burst",
	"tmdb_max_retries":           "tmdb.max_retries",
	"tmdb_retry_base_delay":      "tmdb.retry_base_delay",
	"tmdb_breaker_enabled":       "tmdb.breaker.enabled",
	"tmdb_breaker_timeout":       "tmdb.breaker.timeout",
	"tmdb_breaker_min_requests":  "tmdb.breaker.min_requests",
	"tmdb_breaker_failure_ratio": "tmdb.breaker.failure_ratio",

	// Cache
	"cache_backend":           "cache.backend",
	"cache_capacity_per_kind": "cache.capacity_per_kind",
	"cache_ttl":               "cache.ttl",
	"cache_path":              "cache.path",
	"cache_sweep_interval":    "cache.sweep_interval",

	// Corpus
	"corpus_items_path":      "corpus.items_path",
	"corpus_vectorizer_path": "corpus.vectorizer_path",
	"corpus_matrix_path":     "corpus.matrix_path",
	"corpus_id_column":       "corpus.id_column",
	"corpus_title_column":    "corpus.title_column",

	// Pipeline
	"pipeline_workers":                "pipeline.workers",
	"pipeline_candidate_window":       "pipeline.candidate_window",
	"pipeline_max_results":            "pipeline.max_results",
	"pipeline_max_watched":            "pipeline.max_watched",
	"pipeline_request_timeout":        "pipeline.request_timeout",
	"pipeline_invalidate_per_request": "pipeline.invalidate_per_request",

	// Events
	"events_enabled":      "events.enabled",
	"events_backend":      "events.backend",
	"nats_url":            "events.url",
	"events_topic":        "events.topic",
	"instance_id":         "events.instance_id",
	"nats_max_reconnects": "events.max_reconnects",
	"nats_reconnect_wait": "events.reconnect_wait",

	// Security
	"auth_mode":              "security.auth_mode",
	"jwt_secret":             "security.jwt_secret",
	"token_ttl":              "security.token_ttl",
	"token_issuer":           "security.token_issuer",
	"cors_origins":           "security.cors_origins",
	"rate_limit_requests":    "security.rate_limit_reqs",
	"rate_limit_window":      "security.rate_limit_window",
	"disable_rate_limit":     "security.rate_limit_disabled",
	"casbin_model_path":      "security.casbin.model_path",
	"casbin_policy_path":     "security.casbin.policy_path",
	"casbin_default_role":    "security.casbin.default_role",
	"casbin_reload_interval": "security.casbin.reload_interval",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Supervisor
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

	// Audit
	"audit_enabled":       "audit.enabled",
	"audit_capacity":      "audit.capacity",
	"audit_buffer_size":   "audit.buffer_size",
	"audit_log_to_stdout": "audit.log_to_stdout",
}

// envTransformFunc maps an environment variable to its config path. Unmapped
// variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
