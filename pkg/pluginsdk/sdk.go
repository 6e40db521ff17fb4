// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package pluginsdk defines the contract plughost extensions implement.
//
// A plugin is an in-process Go value produced by a Factory registered in a
// Catalog. The host hands every factory the shared *Context, registers the
// plugin's default storage under its technical name, and later asks it for a
// view the first time the user switches to it.
//
// Example usage:
//
//	package hello
//
//	import "github.com/holomush/plughost/pkg/pluginsdk"
//
//	type Plugin struct {
//		pluginsdk.Base
//		actx *pluginsdk.Context
//	}
//
//	func New(actx *pluginsdk.Context) (pluginsdk.Plugin, error) {
//		return &Plugin{actx: actx}, nil
//	}
//
//	func (p *Plugin) PluginName() string  { return "hello" }
//	func (p *Plugin) DisplayName() string { return "Hello" }
//
//	func (p *Plugin) CreateView(parent pluginsdk.Container) (pluginsdk.View, error) {
//		return pluginsdk.NewTextView(parent, "Hello, world"), nil
//	}
package pluginsdk

import (
	"context"
	"io"
	"regexp"
)

// Container is the parent a plugin view is bound to.
type Container interface {
	// ID identifies the container, usually the owning plugin's name.
	ID() string

	// Width is the number of columns available to the view.
	Width() int
}

// View is a UI object produced by a plugin.
type View interface {
	// Render draws the view. It is only called on the UI goroutine.
	Render(w io.Writer) error
}

// Plugin is the capability set every extension must satisfy.
type Plugin interface {
	// PluginName is the stable technical identifier. It must be unique across
	// all loaded plugins and doubles as the storage namespace key.
	PluginName() string

	// DisplayName is the human-readable label shown in navigation.
	DisplayName() string

	// CreateView produces the plugin's view bound to parent. The host calls it
	// at most once per session.
	CreateView(parent Container) (View, error)
}

// StorageDeclarer is implemented by plugins that declare the initial shape of
// their storage namespace.
type StorageDeclarer interface {
	DefaultStorage() map[string]any
}

// ViewEnterer is implemented by plugins that refresh their view whenever it
// becomes the active pane. Only the host invokes it.
type ViewEnterer interface {
	OnViewEnter(ctx context.Context, view View) error
}

// Closer is implemented by plugins holding resources released at shutdown.
type Closer interface {
	Close() error
}

// Base supplies the optional hooks with their no-op defaults. Embed it in a
// plugin struct and override what is needed.
type Base struct{}

// DefaultStorage returns an empty declaration.
func (Base) DefaultStorage() map[string]any { return map[string]any{} }

// OnViewEnter does nothing.
func (Base) OnViewEnter(context.Context, View) error { return nil }

// DefaultStorageOf returns p's storage declaration, or an empty map when p
// declares none.
func DefaultStorageOf(p Plugin) map[string]any {
	if d, ok := p.(StorageDeclarer); ok {
		if defaults := d.DefaultStorage(); defaults != nil {
			return defaults
		}
	}
	return map[string]any{}
}

// maxNameLength is the maximum allowed length for technical names.
const maxNameLength = 64

// namePattern validates technical names: lowercase letter first, then
// lowercase letters, digits, hyphens or underscores, not ending in a separator.
var namePattern = regexp.MustCompile(`^[a-z]([a-z0-9_-]*[a-z0-9])?$`)

// ValidateName checks a technical plugin name.
func ValidateName(name string) error {
	if name == "" {
		return ContractViolation(name, "plugin name is required")
	}
	if len(name) > maxNameLength {
		return ContractViolation(name, "plugin name must be %d characters or less, got %d", maxNameLength, len(name))
	}
	if !namePattern.MatchString(name) {
		return ContractViolation(name, "plugin name %q must start with a-z and contain only a-z, 0-9, '-' or '_'", name)
	}
	return nil
}

// Validate checks the runtime parts of the contract the compiler cannot:
// the technical name and display name of a constructed plugin.
func Validate(p Plugin) error {
	if p == nil {
		return ContractViolation("", "factory returned a nil plugin")
	}
	name := p.PluginName()
	if err := ValidateName(name); err != nil {
		return err
	}
	if p.DisplayName() == "" {
		return ContractViolation(name, "display name is required")
	}
	return nil
}
