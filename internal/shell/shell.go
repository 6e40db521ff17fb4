// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package shell is the line-oriented front end that switches between plugin
// views. Every view operation is marshalled onto the UI loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/plughost/internal/ui"
	"github.com/holomush/plughost/internal/view"
	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/i18n"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Error codes.
const (
	CodeEmptyInput     = "SHELL_EMPTY_INPUT"
	CodeUnknownPlugin  = "SHELL_UNKNOWN_PLUGIN"
	CodeUnknownCommand = "SHELL_UNKNOWN_COMMAND"
)

// Entry describes one plugin in List output.
type Entry struct {
	Name        string
	DisplayName string
	State       view.State
	Active      bool
}

// Shell reads commands and drives the view dispatcher.
type Shell struct {
	loop       *ui.Loop
	dispatcher *view.Dispatcher
	pane       *ui.Pane
	plugins    []pluginsdk.Plugin
	out        io.Writer
	strings    i18n.Translator
	logger     *slog.Logger
	quitting   bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTranslator sets the translator used for shell messages.
func WithTranslator(t i18n.Translator) Option {
	return func(s *Shell) {
		s.strings = t
	}
}

// New creates a shell over plugins. Messages go to out; views are drawn into
// pane.
func New(loop *ui.Loop, dispatcher *view.Dispatcher, pane *ui.Pane, plugins []pluginsdk.Plugin, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		loop:       loop,
		dispatcher: dispatcher,
		pane:       pane,
		plugins:    plugins,
		out:        out,
		strings:    i18n.New(""),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve finds a plugin by name. An exact PluginName match wins; otherwise
// PluginName and DisplayName are compared case-insensitively.
func (s *Shell) Resolve(name string) (pluginsdk.Plugin, error) {
	for _, p := range s.plugins {
		if p.PluginName() == name {
			return p, nil
		}
	}
	for _, p := range s.plugins {
		if strings.EqualFold(p.PluginName(), name) || strings.EqualFold(p.DisplayName(), name) {
			return p, nil
		}
	}
	return nil, oops.Code(CodeUnknownPlugin).In("shell").With("name", name).
		Errorf("%s: %s", s.strings.T(i18n.KeyUnknownPlugin), name)
}

// Open activates the named plugin's view and draws it.
func (s *Shell) Open(ctx context.Context, name string) error {
	p, err := s.Resolve(name)
	if err != nil {
		return err
	}
	return s.loop.Do(ctx, func() error {
		v, err := s.dispatcher.Activate(ctx, p, s.pane)
		if err != nil {
			return err
		}
		return s.pane.Show(v)
	})
}

// Redraw draws the active view again without firing any hook.
func (s *Shell) Redraw(ctx context.Context) error {
	return s.loop.Do(ctx, func() error {
		v, ok := s.dispatcher.View(s.dispatcher.Active())
		if !ok {
			return nil
		}
		return s.pane.Show(v)
	})
}

// List reports every plugin in load order with its view state.
func (s *Shell) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := s.loop.Do(ctx, func() error {
		active := s.dispatcher.Active()
		entries = make([]Entry, 0, len(s.plugins))
		for _, p := range s.plugins {
			entries = append(entries, Entry{
				Name:        p.PluginName(),
				DisplayName: p.DisplayName(),
				State:       s.dispatcher.State(p.PluginName()),
				Active:      p.PluginName() == active,
			})
		}
		return nil
	})
	return entries, err
}

// Exec runs one command line. After "quit" Quitting reports true.
func (s *Shell) Exec(ctx context.Context, line string) error {
	cmd, err := Parse(line)
	if err != nil {
		return nil //nolint:nilerr // blank lines are ignored
	}

	switch cmd.Name {
	case "list", "ls":
		return s.printList(ctx)
	case "open":
		if cmd.Args == "" {
			s.send("Usage: open <plugin>")
			return nil
		}
		return s.Open(ctx, cmd.Args)
	case "redraw":
		return s.Redraw(ctx)
	case "help":
		s.send("Commands: list, open <plugin>, redraw, quit")
		return nil
	case "quit", "exit":
		s.quitting = true
		return nil
	default:
		return oops.Code(CodeUnknownCommand).In("shell").With("command", cmd.Name).
			Errorf("unknown command: %s", cmd.Name)
	}
}

// Quitting reports whether a quit command was executed.
func (s *Shell) Quitting() bool {
	return s.quitting
}

// Serve greets the user, opens the first plugin, and processes lines from in
// until EOF, quit, or ctx cancellation. Command errors are printed and the
// shell keeps going.
func (s *Shell) Serve(ctx context.Context, in io.Reader) error {
	s.send(s.strings.T(i18n.KeyWelcome))
	if len(s.plugins) == 0 {
		s.send(s.strings.T(i18n.KeyNoPlugins))
	} else if err := s.Open(ctx, s.plugins[0].PluginName()); err != nil {
		s.report(err)
	}

	done := make(chan struct{})
	defer close(done)

	lineCh := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" {
				select {
				case lineCh <- line:
				case <-done:
					return
				}
			}
			if err != nil {
				errCh <- err
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.loop.Done():
			return nil
		case err := <-errCh:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return oops.In("shell").Wrapf(err, "read input")
		case line := <-lineCh:
			if err := s.Exec(ctx, line); err != nil {
				s.report(err)
			}
			if s.quitting {
				return nil
			}
		}
	}
}

func (s *Shell) printList(ctx context.Context) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		s.send(s.strings.T(i18n.KeyNoPlugins))
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		marker := ""
		if e.Active {
			marker = "*"
		}
		rows = append(rows, []string{marker, e.Name, e.DisplayName, e.State.String()})
	}
	s.send(s.strings.T(i18n.KeyAvailablePlugins))
	for _, line := range pluginsdk.Table([]string{"", "NAME", "TITLE", "STATE"}, rows) {
		s.send(line)
	}
	return nil
}

func (s *Shell) report(err error) {
	errutil.LogWarn(s.logger, "shell command failed", err)
	s.send("error: " + err.Error())
}

func (s *Shell) send(msg string) {
	if _, err := fmt.Fprintln(s.out, msg); err != nil {
		s.logger.Debug("shell output failed", "error", err)
	}
}
