// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

const tracerName = "github.com/holomush/plughost/internal/plugin"

// Recorder receives loader metrics.
type Recorder interface {
	PluginLoaded(runtime string)
	PluginLoadFailed()
}

// Record describes one loaded plugin.
type Record struct {
	Plugin pluginsdk.Plugin
	Unit   Unit
	Type   Type
}

// Loader discovers plugin units under a root directory and instantiates them.
//
// Loading is graceful: a unit that fails is logged and skipped and the
// remaining units still load. A unit is all-or-nothing; if any of its plugins
// fails, none of them is kept.
type Loader struct {
	runtimes map[Type]Runtime
	logger   *slog.Logger
	metrics  Recorder
	disabled []glob.Glob
	tracer   trace.Tracer
	records  []Record
}

// LoaderOption configures the Loader.
type LoaderOption func(*loaderConfig)

type loaderConfig struct {
	runtimes []Runtime
	logger   *slog.Logger
	metrics  Recorder
	disabled []string
}

// WithRuntime registers a runtime. A later runtime for the same type
// replaces an earlier one.
func WithRuntime(r Runtime) LoaderOption {
	return func(c *loaderConfig) {
		c.runtimes = append(c.runtimes, r)
	}
}

// WithLogger sets the loader's logger.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(c *loaderConfig) {
		c.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) LoaderOption {
	return func(c *loaderConfig) {
		c.metrics = r
	}
}

// WithDisabled skips unit directories whose name matches any of patterns.
func WithDisabled(patterns ...string) LoaderOption {
	return func(c *loaderConfig) {
		c.disabled = append(c.disabled, patterns...)
	}
}

// NewLoader creates a loader. It fails only on an invalid disabled pattern.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	cfg := loaderConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Loader{
		runtimes: make(map[Type]Runtime, len(cfg.runtimes)),
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		tracer:   otel.Tracer(tracerName),
	}
	for _, r := range cfg.runtimes {
		l.runtimes[r.Type()] = r
	}
	for _, pattern := range cfg.disabled {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, oops.In("loader").With("pattern", pattern).Wrapf(err, "invalid disabled pattern")
		}
		l.disabled = append(l.disabled, g)
	}
	return l, nil
}

// Discover lists the unit directories under root in lexical order. A missing
// root yields no units. Directories without a manifest are skipped silently;
// a directory whose manifest cannot be checked is skipped with a warning.
func (l *Loader) Discover(root string) ([]Unit, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, oops.Code(pluginsdk.CodeDiscoveryFailed).In("loader").With("root", root).Wrap(err)
	}

	var units []Unit
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errutil.LogWarn(l.logger, "skipping plugin unit",
					oops.Code(pluginsdk.CodeDiscoveryFailed).In("loader").With("dir", entry.Name()).
						Hint("manifest is not accessible").Wrap(err),
					"dir", entry.Name())
			}
			continue
		}
		if l.isDisabled(entry.Name()) {
			l.logger.Debug("plugin unit disabled", "dir", entry.Name())
			continue
		}
		units = append(units, Unit{Name: entry.Name(), Dir: dir})
	}
	return units, nil
}

func (l *Loader) isDisabled(name string) bool {
	for _, g := range l.disabled {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// DiscoverAndLoad loads every unit under root and returns the plugins that
// were constructed, in discovery order. It never fails; problems are logged.
func (l *Loader) DiscoverAndLoad(ctx context.Context, root string, actx *pluginsdk.Context) []pluginsdk.Plugin {
	ctx, span := l.tracer.Start(ctx, "plugin.DiscoverAndLoad",
		trace.WithAttributes(attribute.String("plugin.root", root)))
	defer span.End()

	loaded := []pluginsdk.Plugin{}

	units, err := l.Discover(root)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		errutil.LogError(l.logger, "plugin discovery failed", err)
		return loaded
	}

	names := make(map[string]string)
	for _, r := range l.records {
		names[r.Plugin.PluginName()] = r.Unit.Name
	}

	for _, unit := range units {
		typ, ps, err := l.loadUnit(ctx, unit, actx, names)
		if err != nil {
			if l.metrics != nil {
				l.metrics.PluginLoadFailed()
			}
			errutil.LogWarn(l.logger, "skipping plugin unit", err, "dir", unit.Name)
			continue
		}
		for _, p := range ps {
			names[p.PluginName()] = unit.Name
			l.records = append(l.records, Record{Plugin: p, Unit: unit, Type: typ})
			if l.metrics != nil {
				l.metrics.PluginLoaded(string(typ))
			}
			l.logger.Info("loaded plugin",
				"plugin", p.PluginName(),
				"dir", unit.Name,
				"type", string(typ))
		}
		loaded = append(loaded, ps...)
	}

	span.SetAttributes(attribute.Int("plugin.count", len(loaded)))
	return loaded
}

func (l *Loader) loadUnit(ctx context.Context, unit Unit, actx *pluginsdk.Context, names map[string]string) (Type, []pluginsdk.Plugin, error) {
	ctx, span := l.tracer.Start(ctx, "plugin.loadUnit",
		trace.WithAttributes(attribute.String("plugin.dir", unit.Name)))
	defer span.End()

	typ, ps, err := l.instantiate(ctx, unit, actx, names)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return "", nil, oops.Code(pluginsdk.CodeLoadFailed).In("loader").With("dir", unit.Name).Wrap(err)
	}
	span.SetAttributes(attribute.String("plugin.type", string(typ)), attribute.Int("plugin.count", len(ps)))
	return typ, ps, nil
}

func (l *Loader) instantiate(ctx context.Context, unit Unit, actx *pluginsdk.Context, names map[string]string) (Type, []pluginsdk.Plugin, error) {
	data, err := os.ReadFile(filepath.Join(unit.Dir, ManifestFile)) //nolint:gosec // path built from ReadDir entries
	if err != nil {
		return "", nil, oops.With("operation", "read manifest").Wrap(err)
	}
	manifest, err := ParseManifest(data)
	if err != nil {
		return "", nil, err
	}

	rt, ok := l.runtimes[manifest.Type]
	if !ok {
		return "", nil, oops.With("type", string(manifest.Type)).Errorf("no runtime registered for type %q", manifest.Type)
	}

	var ps []pluginsdk.Plugin
	err = errutil.Guard(func() error {
		var err error
		ps, err = rt.Load(ctx, unit, manifest, actx)
		return err
	})
	if err != nil {
		return "", nil, err
	}

	defaults, err := validateUnit(ps, names)
	if err != nil {
		closeAll(l.logger, ps)
		return "", nil, err
	}

	if actx != nil && actx.Storage != nil {
		for i, p := range ps {
			actx.Storage.RegisterPluginStorage(p.PluginName(), defaults[i])
		}
	}
	return manifest.Type, ps, nil
}

// validateUnit checks every plugin of a unit and collects their default
// storage before anything is registered.
func validateUnit(ps []pluginsdk.Plugin, names map[string]string) ([]map[string]any, error) {
	seen := make(map[string]bool, len(ps))
	defaults := make([]map[string]any, len(ps))

	for i, p := range ps {
		var name string
		err := errutil.Guard(func() error {
			if err := pluginsdk.Validate(p); err != nil {
				return err
			}
			name = p.PluginName()
			defaults[i] = pluginsdk.DefaultStorageOf(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if dir, taken := names[name]; taken {
			return nil, pluginsdk.ContractViolation(name, "plugin name %q already loaded from %s", name, dir)
		}
		if seen[name] {
			return nil, pluginsdk.ContractViolation(name, "plugin name %q declared twice in one unit", name)
		}
		seen[name] = true
	}
	return defaults, nil
}

// Records returns the plugins loaded so far with their origin.
func (l *Loader) Records() []Record {
	return append([]Record(nil), l.records...)
}

// CloseAll releases every loaded plugin in reverse load order.
func (l *Loader) CloseAll() {
	ps := make([]pluginsdk.Plugin, len(l.records))
	for i, r := range l.records {
		ps[i] = r.Plugin
	}
	closeAll(l.logger, ps)
	l.records = nil
}
