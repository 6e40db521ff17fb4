// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/plughost/internal/config"
)

// NewRootCmd creates the root command for the plughost CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plughost",
		Short: "plughost - a pluggable view host",
		Long: `plughost discovers plugin units in a directory, gives each plugin a
namespace in a shared storage document, and switches between their views.`,
		SilenceUsage: true,
	}

	// Flag names map to config keys by replacing "-" with ".".
	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path (default: XDG_CONFIG_HOME/plughost/config.yaml)")
	flags.String("plugins-dir", "", "plugin root directory")
	flags.StringSlice("plugins-disabled", nil, "glob patterns of plugin units to skip")
	flags.String("storage-backend", "", "storage backend: file, memory or postgres")
	flags.String("storage-path", "", "storage document path for the file backend")
	flags.String("storage-dsn", "", "PostgreSQL connection string (default: DATABASE_URL)")
	flags.String("log-format", "", "log format (json or text)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("locale", "", "UI locale, e.g. en or de")
	flags.String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")

	cmd.AddCommand(newRunCmd(deps))
	cmd.AddCommand(newPluginsCmd(deps))
	cmd.AddCommand(newStorageCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))

	return cmd
}

// loadConfig resolves configuration from the --config file and the
// command's flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err //nolint:wrapcheck // flag lookup on a registered flag
	}
	return config.Load(path, cmd.Flags())
}
