// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/watchnext/internal/logging"
	"github.com/tomtom215/watchnext/internal/metrics"
)

const (
	// DefaultBaseURL is the TMDB v3 API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// DefaultImageBaseURL prefixes poster paths.
	DefaultImageBaseURL = "https://image.tmdb.org/t/p/w500"

	maxErrorBodySize = 1024
)

var (
	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = errors.New("tmdb: not found")

	// ErrRateLimited is returned when 429 responses persist after all retries.
	ErrRateLimited = errors.New("tmdb: rate limit exceeded")
)

// StatusError reports a non-2xx TMDB response.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s returned status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Genre is a TMDB genre entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Keyword is a TMDB keyword tag.
type Keyword struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie is the subset of GET /movie/{id} the service consumes.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	Tagline       string  `json:"tagline"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	PosterPath    string  `json:"poster_path"`
	Genres        []Genre `json:"genres"`
}

// Keywords is the GET /movie/{id}/keywords payload.
type Keywords struct {
	ID       int       `json:"id"`
	Keywords []Keyword `json:"keywords"`
}

// API is the raw TMDB surface used by the catalog service.
type API interface {
	GetMovie(ctx context.Context, id int) (*Movie, error)
	GetKeywords(ctx context.Context, id int) (*Keywords, error)
}

// Client talks to the TMDB HTTP API.
//
// Outbound calls pass through a token bucket limiter before they are sent,
// and HTTP 429 responses are retried with exponential backoff that honours
// Retry-After. Each call is bounded by the configured timeout.
type Client struct {
	apiKey         string
	baseURL        string
	language       string
	httpClient     *http.Client
	limiter        *rate.Limiter
	timeout        time.Duration
	maxRetries     int
	retryBaseDelay time.Duration
	logger         zerolog.Logger
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimit sets the outbound request rate. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry sets the 429 retry budget and the base backoff delay.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if baseDelay > 0 {
			c.retryBaseDelay = baseDelay
		}
	}
}

// WithTimeout bounds a single logical call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the client logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a TMDB client.
func NewClient(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse tmdb base url: %w", err)
	}

	c := &Client{
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		language:       strings.TrimSpace(language),
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		limiter:        rate.NewLimiter(rate.Limit(40), 20),
		timeout:        5 * time.Second,
		maxRetries:     3,
		retryBaseDelay: 500 * time.Millisecond,
		logger:         logging.WithComponent("tmdb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetMovie fetches GET /movie/{id}.
func (c *Client) GetMovie(ctx context.Context, id int) (*Movie, error) {
	params := url.Values{}
	if c.language != "" {
		params.Set("language", c.language)
	}
	var movie Movie
	if err := c.get(ctx, "movie", "/movie/"+strconv.Itoa(id), params, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetKeywords fetches GET /movie/{id}/keywords.
func (c *Client) GetKeywords(ctx context.Context, id int) (*Keywords, error) {
	var kw Keywords
	if err := c.get(ctx, "keywords", "/movie/"+strconv.Itoa(id)+"/keywords", nil, &kw); err != nil {
		return nil, err
	}
	return &kw, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	resp, err := c.doRequestWithRateLimit(ctx, endpoint, reqURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return fmt.Errorf("%s %s: %w", endpoint, path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(readBodyForError(resp.Body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit sends a GET, waiting on the limiter first and
// retrying HTTP 429 with exponential backoff (base, 2x base, 4x base...).
func (c *Client) doRequestWithRateLimit(ctx context.Context, endpoint, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("tmdb rate limiter: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("build tmdb request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			metrics.RecordCatalogRequest(endpoint, 0, time.Since(start))
			return nil, fmt.Errorf("tmdb %s request (%s): %w", endpoint, logging.RedactURL(reqURL), err)
		}
		metrics.RecordCatalogRequest(endpoint, resp.StatusCode, time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%s after %d retries: %w", endpoint, c.maxRetries, ErrRateLimited)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && seconds >= 0 {
				delay = time.Duration(seconds) * time.Second
			}
		}

		metrics.RecordCatalogRetry(endpoint)
		c.logger.Debug().Str("endpoint", endpoint).Int("attempt", attempt+1).Dur("delay", delay).Msg("TMDB rate limited, backing off")

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	}
}

func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
