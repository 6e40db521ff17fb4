// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package reminders is the built-in plugin that keeps a list of reminders.
package reminders

import (
	"context"
	"maps"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Name is the plugin's technical name and storage namespace.
const Name = "reminders"

// ListKey holds the reminders in the namespace.
const ListKey = "reminders_list"

// Plugin shows reminders oldest first.
type Plugin struct {
	actx *pluginsdk.Context
	view *pluginsdk.TextView
	now  func() time.Time
}

// New is the catalog factory.
func New(actx *pluginsdk.Context) (pluginsdk.Plugin, error) {
	return &Plugin{actx: actx, now: time.Now}, nil
}

// PluginName implements pluginsdk.Plugin.
func (p *Plugin) PluginName() string { return Name }

// DisplayName implements pluginsdk.Plugin.
func (p *Plugin) DisplayName() string { return p.actx.T(i18n.KeyReminders) }

// DefaultStorage implements pluginsdk.StorageDeclarer.
func (p *Plugin) DefaultStorage() map[string]any {
	return map[string]any{ListKey: []any{}}
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

// Add appends a reminder and returns its id.
func (p *Plugin) Add(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", oops.In("reminders").Errorf("reminder text is required")
	}
	id := ulid.Make().String()
	list := append([]any(nil), p.list()...)
	list = append(list, map[string]any{
		"id":         id,
		"text":       text,
		"created_at": p.now().UTC().Format(time.RFC3339),
	})
	if err := p.save(ctx, list); err != nil {
		return "", err
	}
	return id, nil
}

// Remove deletes the reminder with id. Unknown ids are an error.
func (p *Plugin) Remove(ctx context.Context, id string) error {
	current := p.list()
	list := make([]any, 0, len(current))
	for _, item := range current {
		if pluginsdk.StringValue(pluginsdk.MapValue(item)["id"]) == id {
			continue
		}
		list = append(list, item)
	}
	if len(list) == len(current) {
		return oops.In("reminders").With("id", id).Errorf("no reminder %s", id)
	}
	return p.save(ctx, list)
}

// Texts returns the reminder texts in order.
func (p *Plugin) Texts() []string {
	list := p.list()
	out := make([]string, 0, len(list))
	for _, item := range list {
		if m := pluginsdk.MapValue(item); m != nil {
			out = append(out, pluginsdk.StringValue(m["text"]))
			continue
		}
		out = append(out, pluginsdk.StringValue(item))
	}
	return out
}

func (p *Plugin) list() []any {
	return pluginsdk.ListValue(p.actx.Storage.GetPluginData(Name)[ListKey])
}

func (p *Plugin) save(ctx context.Context, list []any) error {
	data := maps.Clone(p.actx.Storage.GetPluginData(Name))
	data[ListKey] = list
	if err := p.actx.Storage.SavePluginData(ctx, Name, data); err != nil {
		return err
	}
	if p.view != nil {
		p.refresh()
	}
	return nil
}

func (p *Plugin) refresh() {
	texts := p.Texts()
	if len(texts) == 0 {
		p.view.SetLines(p.actx.T(i18n.KeyNoEntries))
		return
	}
	p.view.SetLines(pluginsdk.Bullet(texts)...)
}
