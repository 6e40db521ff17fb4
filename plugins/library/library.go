// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package library is the built-in plugin that shows the game library.
package library

import (
	"context"
	"maps"

	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Name is the plugin's technical name and storage namespace.
const Name = "library"

// Plugin renders the games list as a table.
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
func (p *Plugin) DisplayName() string { return p.actx.T(i18n.KeyLibrary) }

// DefaultStorage implements pluginsdk.StorageDeclarer.
func (p *Plugin) DefaultStorage() map[string]any {
	return map[string]any{"games": []any{}}
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

// AddGame appends a game and persists the document.
func (p *Plugin) AddGame(ctx context.Context, title, system string) error {
	data := maps.Clone(p.actx.Storage.GetPluginData(Name))
	games := append([]any(nil), pluginsdk.ListValue(data["games"])...)
	data["games"] = append(games, map[string]any{"title": title, "system": system})
	if err := p.actx.Storage.SavePluginData(ctx, Name, data); err != nil {
		return err
	}
	if p.view != nil {
		p.refresh()
	}
	return nil
}

func (p *Plugin) refresh() {
	games := pluginsdk.ListValue(p.actx.Storage.GetPluginData(Name)["games"])
	if len(games) == 0 {
		p.view.SetLines(p.actx.T(i18n.KeyNoEntries))
		return
	}
	rows := make([][]string, 0, len(games))
	for _, g := range games {
		m := pluginsdk.MapValue(g)
		if m == nil {
			rows = append(rows, []string{pluginsdk.StringValue(g), ""})
			continue
		}
		rows = append(rows, []string{pluginsdk.StringValue(m["title"]), pluginsdk.StringValue(m["system"])})
	}
	p.view.SetLines(pluginsdk.Table([]string{"TITLE", "SYSTEM"}, rows)...)
}
