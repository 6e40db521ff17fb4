// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package plugin

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Unit is one candidate plugin directory under the plugin root.
type Unit struct {
	// Name is the directory's base name.
	Name string
	// Dir is the directory's path.
	Dir string
}

// Runtime turns a unit into plugin instances.
type Runtime interface {
	// Type is the manifest type this runtime handles.
	Type() Type

	// Load instantiates every plugin the unit provides. On error the runtime
	// releases whatever it built.
	Load(ctx context.Context, unit Unit, manifest *Manifest, actx *pluginsdk.Context) ([]pluginsdk.Plugin, error)
}

// BuiltinRuntime resolves manifest factory ids in a compiled-in catalog.
type BuiltinRuntime struct {
	catalog *pluginsdk.Catalog
}

var _ Runtime = (*BuiltinRuntime)(nil)

// NewBuiltinRuntime creates a runtime backed by catalog.
func NewBuiltinRuntime(catalog *pluginsdk.Catalog) *BuiltinRuntime {
	return &BuiltinRuntime{catalog: catalog}
}

// Type implements Runtime.
func (r *BuiltinRuntime) Type() Type { return TypeBuiltin }

// Load implements Runtime.
func (r *BuiltinRuntime) Load(_ context.Context, unit Unit, manifest *Manifest, actx *pluginsdk.Context) ([]pluginsdk.Plugin, error) {
	var built []pluginsdk.Plugin
	for _, id := range manifest.Builtin.Factories {
		factory, ok := r.catalog.Lookup(id)
		if !ok {
			closeAll(contextLogger(actx), built)
			return nil, oops.In("builtin").With("dir", unit.Name).With("factory", id).
				Hint("check builtin.factories in "+ManifestFile).
				Errorf("unknown factory %q", id)
		}

		var p pluginsdk.Plugin
		err := errutil.Guard(func() error {
			var err error
			p, err = factory(actx)
			return err
		})
		if err != nil {
			closeAll(contextLogger(actx), built)
			return nil, oops.In("builtin").With("dir", unit.Name).With("factory", id).Wrap(err)
		}
		built = append(built, p)
	}
	return built, nil
}

// closeAll releases plugins in reverse order, logging failures.
func closeAll(logger *slog.Logger, ps []pluginsdk.Plugin) {
	for i := len(ps) - 1; i >= 0; i-- {
		c, ok := ps[i].(pluginsdk.Closer)
		if !ok {
			continue
		}
		if err := errutil.Guard(c.Close); err != nil {
			name := "<unknown>"
			_ = errutil.Guard(func() error { name = ps[i].PluginName(); return nil }) //nolint:errcheck // name is best effort
			errutil.LogWarn(logger, "plugin close failed", err, "plugin", name)
		}
	}
}

func contextLogger(actx *pluginsdk.Context) *slog.Logger {
	if actx == nil || actx.Logger == nil {
		return slog.Default()
	}
	return actx.Logger
}
