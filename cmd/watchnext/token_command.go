// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/watchnext/internal/auth"
	"github.com/tomtom215/watchnext/internal/authz"
	"github.com/tomtom215/watchnext/internal/config"
)

func newTokenCommand(opts *options) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Maintenance token utilities",
	}
	tokenCmd.AddCommand(newTokenIssueCommand(opts))
	return tokenCmd
}

// newTokenIssueCommand signs a token with the server's JWT_SECRET.
func newTokenIssueCommand(opts *options) *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
		issuer  string
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a JWT for the maintenance routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch role {
			case authz.RoleViewer, authz.RoleOperator, authz.RoleAdmin:
			default:
				return fmt.Errorf("unknown role %q (viewer, operator, admin)", role)
			}

			manager, err := auth.NewJWTManager(&config.SecurityConfig{
				JWTSecret:   os.Getenv("JWT_SECRET"),
				TokenTTL:    ttl,
				TokenIssuer: issuer,
			})
			if err != nil {
				return fmt.Errorf("JWT_SECRET: %w", err)
			}

			token, err := manager.GenerateToken(subject, role)
			if err != nil {
				return err
			}

			if opts.json {
				return writeJSON(cmd, map[string]any{
					"token":      token,
					"subject":    subject,
					"role":       role,
					"expires_at": time.Now().Add(ttl).UTC(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&subject, "subject", "", "Token subject")
	flags.StringVar(&role, "role", authz.RoleOperator, "Role claim")
	flags.DurationVar(&ttl, "ttl", time.Hour, "Token lifetime")
	flags.StringVar(&issuer, "issuer", envOr("TOKEN_ISSUER", "watchnext"), "Token issuer")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
