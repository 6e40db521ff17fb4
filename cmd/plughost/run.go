// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/holomush/plughost/internal/observability"
	"github.com/holomush/plughost/internal/shell"
	"github.com/holomush/plughost/internal/ui"
	"github.com/holomush/plughost/internal/view"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Default values for the run command.
const (
	defaultPaneWidth = 80
	uiQueueSize      = 64
	shutdownTimeout  = 5 * time.Second
)

func newRunCmd(deps *Deps) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load plugins and start the interactive shell",
		Long: `Load every plugin unit under the plugin root, start the UI loop, and
read shell commands (list, open <plugin>, redraw, quit) from standard input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runHost(ctx, cmd, deps.withDefaults(), width)
		},
	}

	cmd.Flags().IntVar(&width, "width", defaultPaneWidth, "pane width in columns")
	return cmd
}

// runHost owns the session: it loads plugins, runs the UI loop on its own
// goroutine, and serves the shell until the input ends.
func runHost(ctx context.Context, cmd *cobra.Command, deps *Deps, width int) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var ready atomic.Bool
	var server ObservabilityServer
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		server = deps.ObservabilityServerFactory(cfg.Metrics.Addr, ready.Load)
		metrics = server.Metrics()
	}

	a, err := newApp(ctx, cfg, deps, cmd.ErrOrStderr(), metrics)
	if err != nil {
		return err
	}
	defer a.close()

	if server != nil {
		errCh, err := server.Start()
		if err != nil {
			return err
		}
		go func() {
			for err := range errCh {
				a.logger.Error("observability server failed", "error", err)
			}
		}()
		defer stopServer(a.logger, server)
	}

	loop := ui.NewLoop(uiQueueSize, a.logger)
	loader, err := a.loader(deps)
	if err != nil {
		return err
	}
	loaded := loader.DiscoverAndLoad(ctx, cfg.Plugins.Dir, a.context(pluginsdk.WithUI(loop)))
	ready.Store(true)
	a.logger.Info("plugins loaded", "count", len(loaded), "root", cfg.Plugins.Dir)

	loopCtx, cancelLoop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop.Run(loopCtx)
	}()

	dispatcherOpts := []view.Option{view.WithLogger(a.logger)}
	if metrics != nil {
		dispatcherOpts = append(dispatcherOpts, view.WithMetrics(metrics))
	}
	sh := shell.New(loop, view.NewDispatcher(dispatcherOpts...),
		ui.NewPane("main", width, cmd.OutOrStdout()), loaded, cmd.OutOrStdout(),
		shell.WithLogger(a.logger), shell.WithTranslator(a.strings))

	serveErr := sh.Serve(ctx, cmd.InOrStdin())

	cancelLoop()
	wg.Wait()
	loader.CloseAll()
	return serveErr
}

func stopServer(logger *slog.Logger, server ObservabilityServer) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Warn("observability server shutdown failed", "error", err)
	}
}
