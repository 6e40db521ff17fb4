// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/internal/observability"
)

type fakeServer struct {
	metrics  *observability.Metrics
	ready    observability.ReadinessChecker
	started  bool
	stopped  bool
	startErr error
}

func (s *fakeServer) Start() (<-chan error, error) {
	s.started = true
	if s.startErr != nil {
		return nil, s.startErr
	}
	ch := make(chan error)
	close(ch)
	return ch, nil
}

func (s *fakeServer) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func (s *fakeServer) Addr() string                    { return "127.0.0.1:0" }
func (s *fakeServer) Metrics() *observability.Metrics { return s.metrics }

func serverDeps(s *fakeServer) *Deps {
	return &Deps{
		ObservabilityServerFactory: func(_ string, ready observability.ReadinessChecker) ObservabilityServer {
			s.ready = ready
			return s
		},
	}
}

func TestRun_ScriptedSession(t *testing.T) {
	isolate(t)

	res, err := execute(t, nil, "list\nopen settings\nquit\n",
		"run", "--plugins-dir", bundledPlugins, "--storage-backend", "memory")
	require.NoError(t, err)

	assert.Contains(t, res.out, "Welcome")
	assert.Contains(t, res.out, "Available plugins")
	assert.Contains(t, res.out, "Dashboard")
	assert.Contains(t, res.out, "username")
	assert.Contains(t, res.out, "Player")
}

func TestRun_UnknownPluginKeepsSessionAlive(t *testing.T) {
	isolate(t)

	res, err := execute(t, nil, "open nowhere\nopen library\n",
		"run", "--plugins-dir", bundledPlugins, "--storage-backend", "memory")
	require.NoError(t, err)

	assert.Contains(t, res.out, "error: ")
	assert.Contains(t, res.out, "Unknown plugin")
	assert.Contains(t, res.out, "Nothing here yet")
}

func TestRun_NoPlugins(t *testing.T) {
	home := isolate(t)

	res, err := execute(t, nil, "",
		"run", "--plugins-dir", home+"/empty", "--storage-backend", "memory")
	require.NoError(t, err)
	assert.Contains(t, res.out, "No plugins loaded")
}

func TestRun_StartsAndStopsMetricsServer(t *testing.T) {
	isolate(t)
	reg := prometheus.NewRegistry()
	s := &fakeServer{metrics: observability.NewMetrics(reg)}

	_, err := execute(t, serverDeps(s), "open home\nquit\n",
		"run", "--plugins-dir", bundledPlugins, "--storage-backend", "memory",
		"--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)

	assert.True(t, s.started)
	assert.True(t, s.stopped)
	require.NotNil(t, s.ready)
	assert.True(t, s.ready(), "ready once plugins are loaded")

	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.PluginsLoaded.WithLabelValues("lua")))
	assert.Equal(t, float64(6), testutil.ToFloat64(s.metrics.PluginsLoaded.WithLabelValues("builtin")))
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.ViewActivations.WithLabelValues("home")))
}

func TestRun_MetricsServerStartFailure(t *testing.T) {
	isolate(t)
	s := &fakeServer{
		metrics:  observability.NewMetrics(prometheus.NewRegistry()),
		startErr: errors.New("address in use"),
	}

	_, err := execute(t, serverDeps(s), "",
		"run", "--plugins-dir", bundledPlugins, "--storage-backend", "memory",
		"--metrics-addr", "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address in use")
	assert.False(t, s.stopped)
}
