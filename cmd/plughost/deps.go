// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/holomush/plughost/internal/observability"
	"github.com/holomush/plughost/internal/storage"
	pgstore "github.com/holomush/plughost/internal/storage/postgres"
	"github.com/holomush/plughost/pkg/pluginsdk"
	"github.com/holomush/plughost/plugins"
)

// Deps contains injectable dependencies for the CLI commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// PostgresFactory connects the postgres storage backend.
	// Default: pgstore.Open
	PostgresFactory func(ctx context.Context, dsn string) (PostgresBackend, error)

	// MigratorFactory creates a schema migrator.
	// Default: pgstore.NewMigrator
	MigratorFactory func(dsn string) (Migrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer

	// Catalog supplies the built-in plugin factories.
	// Default: plugins.Catalog
	Catalog func() *pluginsdk.Catalog
}

// PostgresBackend wraps the methods used from pgstore.Backend.
type PostgresBackend interface {
	storage.Backend
	Close()
}

// Migrator wraps the methods used from pgstore.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Close() error
}

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.PostgresFactory == nil {
		out.PostgresFactory = func(ctx context.Context, dsn string) (PostgresBackend, error) {
			return pgstore.Open(ctx, dsn)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(dsn string) (Migrator, error) {
			return pgstore.NewMigrator(dsn)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
	if out.Catalog == nil {
		out.Catalog = plugins.Catalog
	}
	return &out
}
