// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

// Package auth authenticates maintenance callers with bearer JWTs.
//
// Recommendation endpoints are public. The cache maintenance endpoints require
// a token when security.auth_mode is "jwt". Tokens are HS256-signed with
// security.jwt_secret and carry a subject and a role; the role is then checked
// by the casbin enforcer in internal/authz.
//
// Tokens are minted out of band by operators:
//
//	watchnext token issue --subject ops-bot --role operator
//
// There is no login flow and no revocation list. Keep token TTLs short.
package auth
