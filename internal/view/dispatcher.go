// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package view drives the lifecycle of plugin views: each view is created
// once on first activation and notified on every later switch to it.
package view

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// State is a plugin's view lifecycle state.
type State int

// View lifecycle states.
const (
	Unloaded State = iota
	Created
	Active
	Inactive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Created:
		return "created"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Recorder receives dispatcher metrics.
type Recorder interface {
	ViewActivated(plugin string)
	HookFailed(plugin string)
}

type entry struct {
	view  pluginsdk.View
	state State
}

// Dispatcher tracks one view per plugin and the currently active plugin.
//
// A Dispatcher is owned by the UI goroutine and is not safe for concurrent
// use.
type Dispatcher struct {
	logger  *slog.Logger
	metrics Recorder
	entries map[string]*entry
	active  string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(d *Dispatcher) {
		d.metrics = r
	}
}

// NewDispatcher creates a dispatcher with no views.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:  slog.Default(),
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Activate makes p's view the active one and returns it.
//
// The view is created on the first call only. Every switch from another
// plugin fires OnViewEnter once; hook failures are logged and swallowed.
// Activating the plugin that is already active fires nothing. If CreateView
// fails the plugin stays unloaded, the active view is unchanged and the
// error is returned.
func (d *Dispatcher) Activate(ctx context.Context, p pluginsdk.Plugin, parent pluginsdk.Container) (pluginsdk.View, error) {
	name := p.PluginName()
	e, ok := d.entries[name]
	if !ok {
		e = &entry{state: Unloaded}
		d.entries[name] = e
	}

	if e.state == Active {
		return e.view, nil
	}

	if e.state == Unloaded {
		v, err := d.create(p, parent)
		if err != nil {
			errutil.LogWarn(d.logger, "view creation failed", err, "plugin", name)
			return nil, err
		}
		e.view = v
		e.state = Created
	}

	if prev, ok := d.entries[d.active]; ok && d.active != name {
		prev.state = Inactive
	}
	e.state = Active
	d.active = name

	d.enter(ctx, p, e.view)
	if d.metrics != nil {
		d.metrics.ViewActivated(name)
	}
	return e.view, nil
}

func (d *Dispatcher) create(p pluginsdk.Plugin, parent pluginsdk.Container) (pluginsdk.View, error) {
	var v pluginsdk.View
	err := errutil.Guard(func() error {
		var err error
		v, err = p.CreateView(parent)
		return err
	})
	if err == nil && v == nil {
		err = pluginsdk.ContractViolation(p.PluginName(), "CreateView returned a nil view")
	}
	if err != nil {
		return nil, oops.Code(pluginsdk.CodeViewCreateFailed).In("view").With("plugin", p.PluginName()).Wrap(err)
	}
	return v, nil
}

func (d *Dispatcher) enter(ctx context.Context, p pluginsdk.Plugin, v pluginsdk.View) {
	enterer, ok := p.(pluginsdk.ViewEnterer)
	if !ok {
		return
	}
	err := errutil.Guard(func() error {
		return enterer.OnViewEnter(ctx, v)
	})
	if err == nil {
		return
	}

	err = oops.Code(pluginsdk.CodeHookFailed).In("view").With("plugin", p.PluginName()).Wrap(err)
	errutil.LogWarn(d.logger, "view hook failed", err, "plugin", p.PluginName())
	if d.metrics != nil {
		d.metrics.HookFailed(p.PluginName())
	}
}

// State returns the lifecycle state of the named plugin's view.
func (d *Dispatcher) State(name string) State {
	if e, ok := d.entries[name]; ok {
		return e.state
	}
	return Unloaded
}

// View returns the cached view of the named plugin, if it was created.
func (d *Dispatcher) View(name string) (pluginsdk.View, bool) {
	e, ok := d.entries[name]
	if !ok || e.view == nil {
		return nil, false
	}
	return e.view, true
}

// Active returns the name of the active plugin, or "" if none is.
func (d *Dispatcher) Active() string {
	return d.active
}
