// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/plughost/internal/config"
	"github.com/holomush/plughost/internal/logging"
	"github.com/holomush/plughost/internal/observability"
	"github.com/holomush/plughost/internal/plugin"
	"github.com/holomush/plughost/internal/plugin/capability"
	"github.com/holomush/plughost/internal/plugin/hostfunc"
	pluginlua "github.com/holomush/plughost/internal/plugin/lua"
	"github.com/holomush/plughost/internal/storage"
	"github.com/holomush/plughost/internal/xdg"
	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// app is the wired object graph shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *storage.Registry
	closers  []func()
	metrics  *observability.Metrics
	strings  i18n.Translator
}

// newApp sets up logging and opens storage. metrics may be nil.
func newApp(ctx context.Context, cfg *config.Config, deps *Deps, logOut io.Writer, metrics *observability.Metrics) (*app, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:     cfg,
		logger:  logging.Setup("plughost", version, cfg.Log.Format, level, logOut),
		metrics: metrics,
		strings: i18n.New(cfg.Locale),
	}

	backend, err := a.openBackend(ctx, deps)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []storage.Option{storage.WithLogger(a.logger)}
	if metrics != nil {
		opts = append(opts, storage.WithMetrics(metrics))
	}
	reg, err := storage.Open(ctx, backend, opts...)
	if err != nil && pluginsdk.HasCode(err, "STORAGE_DOCUMENT_CORRUPT") {
		// The corrupt file is left untouched; this session is not persisted.
		errutil.LogError(a.logger, "storage document is corrupt, continuing in memory", err)
		reg, err = storage.Open(ctx, storage.NewMemoryBackend(nil), opts...)
	}
	if err != nil {
		a.close()
		return nil, oops.In("app").Wrapf(err, "open storage")
	}
	a.registry = reg
	return a, nil
}

func (a *app) openBackend(ctx context.Context, deps *Deps) (storage.Backend, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		return storage.NewMemoryBackend(nil), nil
	case config.BackendPostgres:
		pg, err := deps.PostgresFactory(ctx, a.cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		return pg, nil
	default:
		return storage.NewFileBackend(a.cfg.Storage.Path), nil
	}
}

// context builds the application context handed to plugin factories.
func (a *app) context(opts ...pluginsdk.ContextOption) *pluginsdk.Context {
	dataDir, err := xdg.DataDir()
	if err != nil {
		dataDir = ""
	}
	base := []pluginsdk.ContextOption{
		pluginsdk.WithLogger(a.logger),
		pluginsdk.WithTranslator(a.strings),
		pluginsdk.WithDataDir(dataDir),
	}
	return pluginsdk.NewContext(a.registry, append(base, opts...)...)
}

// loader builds a loader with the builtin and Lua runtimes.
func (a *app) loader(deps *Deps) (*plugin.Loader, error) {
	funcs := hostfunc.New(a.registry, capability.NewEnforcer(), hostfunc.WithLogger(a.logger))
	opts := []plugin.LoaderOption{
		plugin.WithLogger(a.logger),
		plugin.WithRuntime(plugin.NewBuiltinRuntime(deps.Catalog())),
		plugin.WithRuntime(pluginlua.NewRuntime(funcs)),
		plugin.WithDisabled(a.cfg.Plugins.Disabled...),
	}
	if a.metrics != nil {
		opts = append(opts, plugin.WithMetrics(a.metrics))
	}
	return plugin.NewLoader(opts...)
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
