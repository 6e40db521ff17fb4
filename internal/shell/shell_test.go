// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/internal/ui"
	"github.com/holomush/plughost/internal/view"
	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

type fakePlugin struct {
	pluginsdk.Base
	name    string
	display string
	entered int
	failNew bool
}

func (p *fakePlugin) PluginName() string  { return p.name }
func (p *fakePlugin) DisplayName() string { return p.display }

func (p *fakePlugin) CreateView(parent pluginsdk.Container) (pluginsdk.View, error) {
	if p.failNew {
		return nil, errors.New("no view today")
	}
	v := pluginsdk.NewTextView(parent, "body of "+p.name)
	v.SetTitle(p.display)
	return v, nil
}

func (p *fakePlugin) OnViewEnter(context.Context, pluginsdk.View) error {
	p.entered++
	return nil
}

type fixture struct {
	shell  *Shell
	screen *bytes.Buffer
	out    *bytes.Buffer
	loop   *ui.Loop
	home   *fakePlugin
	lib    *fakePlugin
}

func newFixture(t *testing.T, plugins ...pluginsdk.Plugin) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		screen: &bytes.Buffer{},
		out:    &bytes.Buffer{},
		loop:   ui.NewLoop(8, logger),
		home:   &fakePlugin{name: "home", display: "Home"},
		lib:    &fakePlugin{name: "library", display: "Library"},
	}
	if plugins == nil {
		plugins = []pluginsdk.Plugin{f.home, f.lib}
	}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		f.loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-finished
	})

	pane := ui.NewPane("main", 40, f.screen)
	f.shell = New(f.loop, view.NewDispatcher(view.WithLogger(logger)), pane, plugins, f.out, WithLogger(logger))
	return f
}

func TestShell_OpenDrawsAndFiresHookOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.shell.Open(ctx, "home"))
	assert.Contains(t, f.screen.String(), "body of home")
	assert.Equal(t, 1, f.home.entered)

	require.NoError(t, f.shell.Open(ctx, "home"))
	assert.Equal(t, 1, f.home.entered, "reopening the active view fires nothing")

	require.NoError(t, f.shell.Open(ctx, "Library"))
	require.NoError(t, f.shell.Open(ctx, "HOME"))
	assert.Equal(t, 2, f.home.entered)
	assert.Equal(t, 1, f.lib.entered)
}

func TestShell_OpenUnknown(t *testing.T) {
	f := newFixture(t)

	err := f.shell.Open(context.Background(), "nope")
	errutil.AssertErrorCode(t, err, CodeUnknownPlugin)
	assert.Contains(t, err.Error(), "Unknown plugin")
}

func TestShell_ResolvePrefersExactName(t *testing.T) {
	upper := &fakePlugin{name: "Notes", display: "Notebook"}
	lower := &fakePlugin{name: "notes", display: "Notes"}
	f := newFixture(t, upper, lower)

	p, err := f.shell.Resolve("notes")
	require.NoError(t, err)
	assert.Same(t, lower, p)

	p, err = f.shell.Resolve("notebook")
	require.NoError(t, err)
	assert.Same(t, upper, p)
}

func TestShell_OpenCreateFailure(t *testing.T) {
	broken := &fakePlugin{name: "broken", display: "Broken", failNew: true}
	f := newFixture(t, broken)

	err := f.shell.Open(context.Background(), "broken")
	errutil.AssertErrorCode(t, err, pluginsdk.CodeViewCreateFailed)

	entries, err := f.shell.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, view.Unloaded, entries[0].State)
}

func TestShell_RedrawDoesNotFireHook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.shell.Redraw(ctx), "nothing active is fine")
	assert.Empty(t, f.screen.String())

	require.NoError(t, f.shell.Open(ctx, "home"))
	f.screen.Reset()

	require.NoError(t, f.shell.Redraw(ctx))
	assert.Contains(t, f.screen.String(), "body of home")
	assert.Equal(t, 1, f.home.entered)
}

func TestShell_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.shell.Open(ctx, "library"))
	require.NoError(t, f.shell.Open(ctx, "home"))

	entries, err := f.shell.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Name: "home", DisplayName: "Home", State: view.Active, Active: true},
		{Name: "library", DisplayName: "Library", State: view.Inactive},
	}, entries)
}

func TestShell_Exec(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.shell.Exec(ctx, ""))
	require.NoError(t, f.shell.Exec(ctx, "open"))
	assert.Contains(t, f.out.String(), "Usage: open <plugin>")

	require.NoError(t, f.shell.Exec(ctx, "open Library"))
	assert.Equal(t, 1, f.lib.entered)

	require.NoError(t, f.shell.Exec(ctx, "ls"))
	assert.Contains(t, f.out.String(), "Available plugins")
	assert.Contains(t, f.out.String(), "inactive")

	err := f.shell.Exec(ctx, "dance")
	errutil.AssertErrorCode(t, err, CodeUnknownCommand)

	assert.False(t, f.shell.Quitting())
	require.NoError(t, f.shell.Exec(ctx, "quit"))
	assert.True(t, f.shell.Quitting())
}

func TestShell_ServeScript(t *testing.T) {
	f := newFixture(t)
	script := strings.Join([]string{
		"open library",
		"bogus",
		"open home",
		"quit",
		"open library",
	}, "\n")

	require.NoError(t, f.shell.Serve(context.Background(), strings.NewReader(script)))

	out := f.out.String()
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "error: unknown command: bogus")
	assert.Equal(t, 2, f.home.entered, "first plugin opened on start, then reopened")
	assert.Equal(t, 1, f.lib.entered, "lines after quit are not run")
}

func TestShell_ServeEOF(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.shell.Serve(context.Background(), strings.NewReader("open library")))
	assert.Equal(t, 1, f.lib.entered, "a final line without newline still runs")
}

func TestShell_ServeNoPluginsGerman(t *testing.T) {
	f := newFixture(t, []pluginsdk.Plugin{}...)
	f.shell = New(f.loop, view.NewDispatcher(), ui.NewPane("main", 40, f.screen), nil, f.out,
		WithTranslator(i18n.New("de_DE.UTF-8")))

	require.NoError(t, f.shell.Serve(context.Background(), strings.NewReader("list\n")))
	assert.Contains(t, f.out.String(), "Willkommen")
	assert.Contains(t, f.out.String(), "Keine Plugins geladen")
}

func TestShell_ServeStopsWithLoop(t *testing.T) {
	f := newFixture(t)
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()

	errCh := make(chan error, 1)
	go func() { errCh <- f.shell.Serve(context.Background(), pr) }()

	f.loop.Stop()
	require.NoError(t, <-errCh)
}
