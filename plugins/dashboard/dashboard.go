// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package dashboard is the built-in plugin that summarises other plugins'
// namespaces. Aggregation runs off the UI goroutine on storage snapshots;
// the result is posted back to the UI loop before the view is touched.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Name is the plugin's technical name and storage namespace.
const Name = "dashboard"

// Source is one list the dashboard counts.
type Source struct {
	Namespace string
	Key       string
}

// DefaultSources are the built-in lists the dashboard summarises.
var DefaultSources = []Source{
	{Namespace: "library", Key: "games"},
	{Namespace: "reminders", Key: "reminders_list"},
	{Namespace: "emulators", Key: "emulators"},
}

// Summary is the entry count of one source.
type Summary struct {
	Source
	Count int
}

// Plugin aggregates counts in the background on every view entry.
type Plugin struct {
	actx    *pluginsdk.Context
	view    *pluginsdk.TextView
	sources []Source

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New is the catalog factory.
func New(actx *pluginsdk.Context) (pluginsdk.Plugin, error) {
	return NewWithSources(actx, DefaultSources), nil
}

// NewWithSources creates a dashboard over custom sources.
func NewWithSources(actx *pluginsdk.Context, sources []Source) *Plugin {
	return &Plugin{actx: actx, sources: sources}
}

// PluginName implements pluginsdk.Plugin.
func (p *Plugin) PluginName() string { return Name }

// DisplayName implements pluginsdk.Plugin.
func (p *Plugin) DisplayName() string { return p.actx.T(i18n.KeyDashboard) }

// CreateView implements pluginsdk.Plugin.
func (p *Plugin) CreateView(parent pluginsdk.Container) (pluginsdk.View, error) {
	p.view = pluginsdk.NewTextView(parent, p.actx.T(i18n.KeyLoading))
	p.view.SetTitle(p.DisplayName())
	return p.view, nil
}

// OnViewEnter shows a loading line and starts a background refresh. Any
// refresh still running is cancelled.
func (p *Plugin) OnViewEnter(ctx context.Context, _ pluginsdk.View) error {
	p.view.SetLines(p.actx.T(i18n.KeyLoading))

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.cancel = cancel
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		summaries, err := p.Collect(ctx)
		if ctx.Err() != nil {
			return
		}
		p.actx.Post(func() { p.show(summaries, err) })
	}()
	return nil
}

// Collect counts every source from storage snapshots concurrently. It does
// not touch the view and may run on any goroutine.
func (p *Plugin) Collect(ctx context.Context) ([]Summary, error) {
	g, ctx := errgroup.WithContext(ctx)
	out := make([]Summary, len(p.sources))
	for i, src := range p.sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap := p.actx.Storage.Snapshot(src.Namespace)
			out[i] = Summary{Source: src, Count: len(pluginsdk.ListValue(snap[src.Key]))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Wait blocks until background refreshes have finished.
func (p *Plugin) Wait() {
	p.wg.Wait()
}

// Close cancels any refresh in flight and waits for it.
func (p *Plugin) Close() error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}

func (p *Plugin) show(summaries []Summary, err error) {
	if err != nil {
		p.view.SetLines("error: " + err.Error())
		return
	}
	counts := make(map[string]any, len(summaries))
	for _, s := range summaries {
		counts[s.Namespace] = s.Count
	}
	lines := pluginsdk.Pairs(counts)
	lines = append(lines, fmt.Sprintf("namespaces: %d", len(p.actx.Storage.Namespaces())))
	p.view.SetLines(lines...)
}
