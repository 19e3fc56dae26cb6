// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package config

import "time"

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	TMDB       TMDBConfig       `koanf:"tmdb"`
	Cache      CacheConfig      `koanf:"cache"`
	Corpus     CorpusConfig     `koanf:"corpus"`
	Pipeline   PipelineConfig   `koanf:"pipeline"`
	Events     EventsConfig     `koanf:"events"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Audit      AuditConfig      `koanf:"audit"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// TMDBConfig holds catalog API settings.
type TMDBConfig struct {
	APIKey       string `koanf:"api_key"`
	BaseURL      string `koanf:"base_url"`
	ImageBaseURL string `koanf:"image_base_url"`
	Language     string `koanf:"language"`

	// Timeout bounds each outbound call.
	Timeout time.Duration `koanf:"timeout"`

	// RateLimit is the sustained request rate in requests per second.
	RateLimit float64 `koanf:"rate_limit"`
	Burst     int     `koanf:"burst"`

	// MaxRetries applies to HTTP 429 responses only.
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the circuit breaker around TMDB.
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// CacheConfig holds feature cache settings.
type CacheConfig struct {
	// Backend is "memory" or "badger".
	Backend         string        `koanf:"backend"`
	CapacityPerKind int           `koanf:"capacity_per_kind"`
	TTL             time.Duration `koanf:"ttl"`
	// Path is the badger directory. Empty keeps badger in memory.
	Path          string        `koanf:"path"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// CorpusConfig locates the precomputed corpus artifact. A .gz suffix on any
// path means gzip.
type CorpusConfig struct {
	ItemsPath      string `koanf:"items_path"`
	VectorizerPath string `koanf:"vectorizer_path"`
	MatrixPath     string `koanf:"matrix_path"`
	IDColumn       string `koanf:"id_column"`
	TitleColumn    string `koanf:"title_column"`
}

// PipelineConfig holds recommendation pipeline settings.
type PipelineConfig struct {
	Workers         int           `koanf:"workers"`
	CandidateWindow int           `koanf:"candidate_window"`
	MaxResults      int           `koanf:"max_results"`
	MaxWatched      int           `koanf:"max_watched"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	// InvalidatePerRequest clears the feature cache at the start of every
	// request.
	InvalidatePerRequest bool `koanf:"invalidate_per_request"`
}

// EventsConfig holds invalidation bus settings.
type EventsConfig struct {
	Enabled bool `koanf:"enabled"`
	// Backend is "memory" or "nats".
	Backend       string        `koanf:"backend"`
	URL           string        `koanf:"url"`
	Topic         string        `koanf:"topic"`
	InstanceID    string        `koanf:"instance_id"`
	MaxReconnects int           `koanf:"max_reconnects"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// SecurityConfig holds maintenance authentication, authorization, CORS and
// inbound rate limiting settings.
type SecurityConfig struct {
	// AuthMode is "none" or "jwt".
	AuthMode    string        `koanf:"auth_mode"`
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
	TokenIssuer string        `koanf:"token_issuer"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	Casbin CasbinConfig `koanf:"casbin"`
}

// CasbinConfig overrides the embedded authorization model and policy.
type CasbinConfig struct {
	ModelPath      string        `koanf:"model_path"`
	PolicyPath     string        `koanf:"policy_path"`
	DefaultRole    string        `koanf:"default_role"`
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `koanf:"level"`
	// Format is json or console.
	Format string `koanf:"format"`
	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// AuditConfig controls the maintenance audit trail.
type AuditConfig struct {
	Enabled bool `koanf:"enabled"`
	// Capacity is the number of events kept in memory.
	Capacity    int  `koanf:"capacity"`
	BufferSize  int  `koanf:"buffer_size"`
	LogToStdout bool `koanf:"log_to_stdout"`
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
