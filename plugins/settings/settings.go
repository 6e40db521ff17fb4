// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package settings is the built-in plugin that shows and edits user
// preferences.
package settings

import (
	"context"
	"maps"

	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Name is the plugin's technical name and storage namespace.
const Name = "settings"

// Plugin renders the settings namespace as aligned key/value pairs.
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
func (p *Plugin) DisplayName() string { return p.actx.T(i18n.KeySettings) }

// DefaultStorage implements pluginsdk.StorageDeclarer.
func (p *Plugin) DefaultStorage() map[string]any {
	return map[string]any{
		"username": "Player",
		"theme":    "Light",
		"language": string(p.actx.Strings.Locale()),
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

// Set stores one preference and persists the document.
func (p *Plugin) Set(ctx context.Context, key string, value any) error {
	data := maps.Clone(p.actx.Storage.GetPluginData(Name))
	data[key] = value
	if err := p.actx.Storage.SavePluginData(ctx, Name, data); err != nil {
		return err
	}
	p.refresh()
	return nil
}

func (p *Plugin) refresh() {
	if p.view == nil {
		return
	}
	p.view.SetLines(pluginsdk.Pairs(p.actx.Storage.GetPluginData(Name))...)
}
