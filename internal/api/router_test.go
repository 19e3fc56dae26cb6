// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/auth"
	"github.com/tomtom215/watchnext/internal/authz"
	"github.com/tomtom215/watchnext/internal/config"
)

const testSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"

func newSecuredServer(t *testing.T) (http.Handler, *auth.JWTManager) {
	t.Helper()

	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{
		AuthMode:    auth.AuthModeJWT,
		JWTSecret:   testSecret,
		TokenTTL:    time.Hour,
		TokenIssuer: "watchnext",
	})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("NewEnforcer failed: %v", err)
	}
	t.Cleanup(enforcer.Close)

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = true
	srv := NewRouter(RouterConfig{
		Handler:    NewHandler(newFakeRecommender()),
		Middleware: NewChiMiddleware(mwCfg),
		Authn:      auth.NewMiddleware(jwtManager, auth.AuthModeJWT, zerolog.Nop()),
		Authz:      authz.NewMiddleware(enforcer, zerolog.Nop()),
		Logger:     zerolog.Nop(),
	}).Setup()
	return srv, jwtManager
}

func TestRouter_MaintenanceRequiresRole(t *testing.T) {
	t.Parallel()

	srv, jwtManager := newSecuredServer(t)
	token := func(role string) string {
		tok, err := jwtManager.GenerateToken("ops-bot", role)
		if err != nil {
			t.Fatalf("GenerateToken failed: %v", err)
		}
		return tok
	}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"recommendations stay public", http.MethodPost, "/api/v1/recommendations", "", http.StatusOK},
		{"health stays public", http.MethodGet, "/api/v1/health/live", "", http.StatusOK},
		{"invalidate without token", http.MethodPost, "/api/v1/cache/invalidate", "", http.StatusUnauthorized},
		{"invalidate with garbage token", http.MethodPost, "/api/v1/cache/invalidate", "garbage", http.StatusUnauthorized},
		{"invalidate as viewer", http.MethodPost, "/api/v1/cache/invalidate", token(authz.RoleViewer), http.StatusForbidden},
		{"invalidate as operator", http.MethodPost, "/api/v1/cache/invalidate", token(authz.RoleOperator), http.StatusOK},
		{"invalidate as admin", http.MethodPost, "/api/v1/cache/invalidate", token(authz.RoleAdmin), http.StatusOK},
		{"stats as viewer", http.MethodGet, "/api/v1/cache/stats", token(authz.RoleViewer), http.StatusOK},
		{"corpus without token", http.MethodGet, "/api/v1/corpus", "", http.StatusUnauthorized},
		{"legacy clear as viewer", http.MethodPost, "/clear-cache", token(authz.RoleViewer), http.StatusForbidden},
		{"legacy clear as operator", http.MethodPost, "/clear-cache", token(authz.RoleOperator), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var body *strings.Reader
			if tt.path == "/api/v1/recommendations" {
				body = strings.NewReader(`{"watchedIds":[550]}`)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRecommender())

	w := doRequest(t, srv, http.MethodGet, "/api/v1/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if resp := decodeEnvelope(t, w); resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected NOT_FOUND envelope, got %s", w.Body.String())
	}

	w = doRequest(t, srv, http.MethodGet, "/recommend", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}

func TestRouter_MetricsAndHeaders(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, newFakeRecommender())
	doRequest(t, srv, http.MethodPost, "/api/v1/recommendations", `{"watchedIds":[550]}`)

	w := doRequest(t, srv, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "watchnext_api_requests_total") {
		t.Error("Expected API request counter in /metrics output")
	}

	w = doRequest(t, srv, http.MethodGet, "/api/v1/health/live", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID response header")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("Expected security headers on API responses")
	}
}
