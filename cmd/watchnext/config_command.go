// WatchNext - Content-Based Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/watchnext

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/watchnext/internal/config"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(newConfigValidateCommand())
	return configCmd
}

// newConfigValidateCommand loads configuration exactly as the server does.
func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate server configuration from file and environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWithKoanf()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"environment", cfg.Server.Environment},
				{"listen", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)},
				{"cache backend", cfg.Cache.Backend},
				{"events", eventsSummary(cfg)},
				{"auth mode", cfg.Security.AuthMode},
				{"workers", fmt.Sprint(cfg.Pipeline.Workers)},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func eventsSummary(cfg *config.Config) string {
	if !cfg.Events.Enabled {
		return "disabled"
	}
	if cfg.Events.Backend == "nats" {
		return "nats " + cfg.Events.URL
	}
	return cfg.Events.Backend
}
