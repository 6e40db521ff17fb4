// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/plughost/pkg/i18n"
)

// Storage is the namespaced persistence the host exposes to plugins.
//
// Namespace maps returned by GetPluginData belong to the UI goroutine.
// Background work must use Snapshot.
type Storage interface {
	// RegisterPluginStorage merges defaults into name's namespace without
	// overwriting keys that already exist.
	RegisterPluginStorage(name string, defaults map[string]any)

	// GetPluginData returns name's namespace, creating it empty on first use.
	GetPluginData(name string) map[string]any

	// SavePluginData replaces name's namespace with data and persists the
	// whole document.
	SavePluginData(ctx context.Context, name string, data map[string]any) error

	// Snapshot returns a deep copy of name's namespace for read-only use.
	Snapshot(name string) map[string]any

	// Namespaces lists every known namespace, persisted or live.
	Namespaces() []string
}

// UI marshals work onto the goroutine that owns every view.
type UI interface {
	// Post schedules fn on the UI goroutine. It returns false if the UI loop
	// has stopped and fn will never run.
	Post(fn func()) bool
}

// Context is the dependency root handed to every plugin factory. It is built
// once before loading starts and shared by pointer for the whole session.
type Context struct {
	Storage   Storage
	UI        UI
	Logger    *slog.Logger
	Strings   i18n.Translator
	SessionID ulid.ULID
	DataDir   string
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithUI sets the UI dispatcher.
func WithUI(ui UI) ContextOption {
	return func(c *Context) {
		c.UI = ui
	}
}

// WithLogger sets the base logger.
func WithLogger(l *slog.Logger) ContextOption {
	return func(c *Context) {
		c.Logger = l
	}
}

// WithTranslator sets the translator used by T.
func WithTranslator(t i18n.Translator) ContextOption {
	return func(c *Context) {
		c.Strings = t
	}
}

// WithDataDir sets the directory plugins may use for their own files.
func WithDataDir(dir string) ContextOption {
	return func(c *Context) {
		c.DataDir = dir
	}
}

// NewContext creates the application context around storage.
func NewContext(storage Storage, opts ...ContextOption) *Context {
	c := &Context{
		Storage:   storage,
		Logger:    slog.Default(),
		Strings:   i18n.New(""),
		SessionID: ulid.Make(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Log returns a logger tagged with the plugin name and session id.
func (c *Context) Log(pluginName string) *slog.Logger {
	return c.Logger.With("plugin", pluginName, "session_id", c.SessionID.String())
}

// T translates key into the session locale.
func (c *Context) T(key i18n.Key) string {
	return c.Strings.T(key)
}

// Post forwards fn to the UI loop. Without a UI loop fn runs inline, which
// is only appropriate for tests and headless tools.
func (c *Context) Post(fn func()) bool {
	if c.UI == nil {
		fn()
		return true
	}
	return c.UI.Post(fn)
}
