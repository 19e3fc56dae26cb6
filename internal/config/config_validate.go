// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package config

import (
	"fmt"
	"strings"
)

// MinJWTSecretLength matches the minimum enforced by the auth package.
const MinJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateCorpus(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateSupervisor(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	if c.Server.WriteTimeout < c.Pipeline.RequestTimeout {
		return fmt.Errorf("HTTP_WRITE_TIMEOUT (%s) must not be shorter than PIPELINE_REQUEST_TIMEOUT (%s)",
			c.Server.WriteTimeout, c.Pipeline.RequestTimeout)
	}
	return nil
}

// validateTMDB requires an API key and well-formed endpoints.
func (c *Config) validateTMDB() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if c.TMDB.ImageBaseURL != "" {
		if err := validateHTTPURL(c.TMDB.ImageBaseURL, "TMDB_IMAGE_BASE_URL"); err != nil {
			return err
		}
	}
	if c.TMDB.Timeout <= 0 {
		return fmt.Errorf("TMDB_TIMEOUT must be positive")
	}
	if c.TMDB.RateLimit <= 0 || c.TMDB.Burst < 1 {
		return fmt.Errorf("TMDB_RATE_LIMIT and TMDB_BURST must be positive")
	}
	if c.TMDB.MaxRetries < 0 {
		return fmt.Errorf("TMDB_MAX_RETRIES must not be negative")
	}
	if c.TMDB.Breaker.Enabled {
		b := c.TMDB.Breaker
		if b.FailureRatio <= 0 || b.FailureRatio > 1 {
			return fmt.Errorf("TMDB_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", b.FailureRatio)
		}
		if b.Timeout <= 0 {
			return fmt.Errorf("TMDB_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "memory":
	case "badger":
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("CACHE_TTL must be positive for the badger backend")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be 'memory' or 'badger', got %q", c.Cache.Backend)
	}
	if c.Cache.CapacityPerKind < 1 {
		return fmt.Errorf("CACHE_CAPACITY_PER_KIND must be at least 1")
	}
	if c.Cache.TTL < 0 || c.Cache.SweepInterval < 0 {
		return fmt.Errorf("CACHE_TTL and CACHE_SWEEP_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) validateCorpus() error {
	missing := make([]string, 0, 3)
	if c.Corpus.ItemsPath == "" {
		missing = append(missing, "CORPUS_ITEMS_PATH")
	}
	if c.Corpus.VectorizerPath == "" {
		missing = append(missing, "CORPUS_VECTORIZER_PATH")
	}
	if c.Corpus.MatrixPath == "" {
		missing = append(missing, "CORPUS_MATRIX_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s required", strings.Join(missing, ", "))
	}
	if c.Corpus.IDColumn == "" || c.Corpus.TitleColumn == "" {
		return fmt.Errorf("CORPUS_ID_COLUMN and CORPUS_TITLE_COLUMN must not be empty")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	p := c.Pipeline
	if p.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}
	if p.MaxResults < 1 || p.CandidateWindow < p.MaxResults {
		return fmt.Errorf("PIPELINE_CANDIDATE_WINDOW (%d) must be at least PIPELINE_MAX_RESULTS (%d) and results must be positive",
			p.CandidateWindow, p.MaxResults)
	}
	if p.MaxWatched < 1 {
		return fmt.Errorf("PIPELINE_MAX_WATCHED must be at least 1")
	}
	if p.RequestTimeout <= 0 {
		return fmt.Errorf("PIPELINE_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !c.Events.Enabled {
		return nil
	}
	switch c.Events.Backend {
	case "memory":
	case "nats":
		if err := validateNATSURL(c.Events.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be 'memory' or 'nats', got %q", c.Events.Backend)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC must not be empty")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
	case "jwt":
		if len(c.Security.JWTSecret) < MinJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE=jwt", MinJWTSecretLength)
		}
		if c.Security.TokenTTL <= 0 {
			return fmt.Errorf("TOKEN_TTL must be positive")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be 'none' or 'jwt', got %q", c.Security.AuthMode)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
		}
	}

	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
			}
		}
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold < 0 || c.Supervisor.FailureDecay < 0 {
		return fmt.Errorf("supervisor failure threshold and decay must not be negative")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.Enabled && (c.Audit.Capacity < 1 || c.Audit.BufferSize < 1) {
		return fmt.Errorf("AUDIT_CAPACITY and AUDIT_BUFFER_SIZE must be at least 1 when audit is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be 'json' or 'console', got %q", c.Logging.Format)
	}
	return nil
}
