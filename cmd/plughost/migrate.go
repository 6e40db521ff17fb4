// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/plughost/internal/config"
)

func newMigrateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres storage schema",
		Long: `Apply or roll back the schema used by the postgres storage backend.
The connection string comes from storage.dsn or DATABASE_URL.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				cmd.Println("Running migrations...")
				if err := m.Up(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "up").Wrap(err)
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "down").Wrap(err)
				}
				cmd.Println("Migrations rolled back")
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, deps, func(m Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "version").Wrap(err)
				}
				if dirty {
					cmd.Printf("version %d (dirty)\n", v)
					return nil
				}
				cmd.Printf("version %d\n", v)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, deps *Deps, fn func(Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.DSN == "" {
		return oops.Code(config.CodeInvalid).
			Hint("set storage.dsn, --storage-dsn or DATABASE_URL").
			Errorf("a postgres connection string is required")
	}

	m, err := deps.withDefaults().MigratorFactory(cfg.Storage.DSN)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			cmd.PrintErrln("warning: failed to close migrator:", cerr)
		}
	}()
	return fn(m)
}
