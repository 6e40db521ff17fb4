// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package home is the built-in landing page plugin.
package home

import (
	"context"
	"fmt"
	"maps"

	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Name is the plugin's technical name and storage namespace.
const Name = "home"

// Plugin greets the user and counts visits.
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
func (p *Plugin) DisplayName() string { return p.actx.T(i18n.KeyHome) }

// DefaultStorage implements pluginsdk.StorageDeclarer.
func (p *Plugin) DefaultStorage() map[string]any {
	return map[string]any{"visits": 0}
}

// CreateView implements pluginsdk.Plugin.
func (p *Plugin) CreateView(parent pluginsdk.Container) (pluginsdk.View, error) {
	p.view = pluginsdk.NewTextView(parent)
	p.view.SetTitle(p.DisplayName())
	return p.view, nil
}

// OnViewEnter counts the visit and redraws the greeting.
func (p *Plugin) OnViewEnter(ctx context.Context, _ pluginsdk.View) error {
	data := maps.Clone(p.actx.Storage.GetPluginData(Name))
	visits := pluginsdk.IntValue(data["visits"]) + 1
	data["visits"] = visits
	if err := p.actx.Storage.SavePluginData(ctx, Name, data); err != nil {
		return err
	}

	user := pluginsdk.StringValue(p.actx.Storage.Snapshot("settings")["username"])
	if user == "" {
		user = "Player"
	}
	width := 0
	if parent := p.view.Parent(); parent != nil {
		width = parent.Width()
	}
	p.view.SetLines(
		fmt.Sprintf("%s, %s!", p.actx.T(i18n.KeyWelcome), user),
		pluginsdk.Separator(width),
		fmt.Sprintf("visits: %d", visits),
		fmt.Sprintf("session: %s", p.actx.SessionID),
	)
	return nil
}
