// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/watchnext/internal/api"
	"github.com/tomtom215/watchnext/internal/middleware"
)

// apiClient talks to the /api/v1 routes and unwraps the response envelope.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// envelope mirrors api.APIResponse with a deferred data payload.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *api.APIError   `json:"error"`
	Meta    *api.APIMeta    `json:"meta"`
}

// apiError is a non-success envelope returned by the server.
type apiError struct {
	Status int
	*api.APIError
}

func (e *apiError) Error() string {
	msg := fmt.Sprintf("server returned %d %s: %s", e.Status, e.Code, e.Message)
	if e.RequestID != "" {
		msg += " (request " + e.RequestID + ")"
	}
	return msg
}

func newAPIClient(baseURL, token string, timeout time.Duration) *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// do sends body as JSON when non-nil and decodes the envelope data into out.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) (*api.APIMeta, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode %s response (status %d): %w", path, resp.StatusCode, err)
	}
	if !env.Success || env.Error != nil {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &api.APIError{Code: "UNKNOWN", Message: http.StatusText(resp.StatusCode)}
		}
		if apiErr.RequestID == "" {
			apiErr.RequestID = resp.Header.Get(middleware.RequestIDHeader)
		}
		return nil, &apiError{Status: resp.StatusCode, APIError: apiErr}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", path, err)
		}
	}
	return env.Meta, nil
}
