// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package authz

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/watchnext/internal/auth"
)

// DeniedFunc observes a request refused by policy.
type DeniedFunc func(r *http.Request, claims *auth.Claims, action string)

// Middleware authorizes authenticated requests.
type Middleware struct {
	enforcer *Enforcer
	onDenied DeniedFunc
	logger   zerolog.Logger
}

// NewMiddleware creates the authorization middleware.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewMiddleware(enforcer *Enforcer, logger zerolog.Logger) *Middleware {
	return &Middleware{
		enforcer: enforcer,
		logger:   logger.With().Str("component", "authz").Logger(),
	}
}

// OnDenied registers fn to run for every denied request. It is not safe to
// call while requests are being served.
func (m *Middleware) OnDenied(fn DeniedFunc) {
	m.onDenied = fn
}

// AuthorizeRequest checks the request path against the policy, with the
// action taken from the HTTP method. It must run after auth.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: no authentication context", http.StatusForbidden)
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.EnforceRole(claims.Subject, claims.Role, r.URL.Path, action)
		if err != nil {
			m.logger.Error().Err(err).Msg("Authorization error")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if !allowed {
			m.logger.Warn().
				Str("subject", claims.Subject).
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Authorization denied")
			if m.onDenied != nil {
				m.onDenied(r, claims, action)
			}
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return "write"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}
