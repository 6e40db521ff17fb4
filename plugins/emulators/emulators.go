// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package emulators is the built-in plugin that lists configured emulators.
package emulators

import (
	"context"
	"fmt"

	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Name is the plugin's technical name and storage namespace.
const Name = "emulators"

// Plugin lists the emulators recorded in its namespace.
type Plugin struct {
	actx *pluginsdk.Context
	view *pluginsdk.TextView
}

// New is the catalog factory.
func New(actx *pluginsdk.Context) (pluginsdk.Plugin, error) {
	return &Plugin{actx: actx}, nil
}

// PluginName implements pluginsdk.Plugin.
func (p *Plugin) PluginName() string { return Name }

// DisplayName implements pluginsdk.Plugin.
func (p *Plugin) DisplayName() string { return p.actx.T(i18n.KeyEmulators) }

// DefaultStorage implements pluginsdk.StorageDeclarer.
func (p *Plugin) DefaultStorage() map[string]any {
	return map[string]any{
		"rom_dir":   "",
		"emulators": []any{},
	}
}

// CreateView implements pluginsdk.Plugin.
func (p *Plugin) CreateView(parent pluginsdk.Container) (pluginsdk.View, error) {
	p.view = pluginsdk.NewTextView(parent)
	p.view.SetTitle(p.DisplayName())
	p.refresh()
	return p.view, nil
}

// OnViewEnter implements pluginsdk.ViewEnterer.
func (p *Plugin) OnViewEnter(context.Context, pluginsdk.View) error {
	p.refresh()
	return nil
}

func (p *Plugin) refresh() {
	data := p.actx.Storage.GetPluginData(Name)

	var lines []string
	if dir := pluginsdk.StringValue(data["rom_dir"]); dir != "" {
		lines = append(lines, pluginsdk.Pairs(map[string]any{"rom_dir": dir})...)
	}

	items := pluginsdk.ListValue(data["emulators"])
	if len(items) == 0 {
		p.view.SetLines(append(lines, p.actx.T(i18n.KeyNoEntries))...)
		return
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, describe(item))
	}
	p.view.SetLines(append(lines, pluginsdk.Bullet(names)...)...)
}

// describe renders an entry that is either a bare name or a
// {"name", "system"} object.
func describe(item any) string {
	m := pluginsdk.MapValue(item)
	if m == nil {
		return pluginsdk.StringValue(item)
	}
	name := pluginsdk.StringValue(m["name"])
	if system := pluginsdk.StringValue(m["system"]); system != "" {
		return fmt.Sprintf("%s (%s)", name, system)
	}
	return name
}
