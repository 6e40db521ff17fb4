// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package observability

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/pkg/errutil"
)

func startServer(t *testing.T, ready ReadinessChecker) (*Server, <-chan error) {
	t.Helper()
	s := NewServer("127.0.0.1:0", ready, WithServerLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	errCh, err := s.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	require.NotEmpty(t, s.Addr())
	return s, errCh
}

func get(t *testing.T, s *Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get("http://" + s.Addr() + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Probes(t *testing.T) {
	tests := []struct {
		name       string
		ready      ReadinessChecker
		path       string
		wantStatus int
		wantBody   string
	}{
		{"liveness", func() bool { return false }, "/healthz/liveness", http.StatusOK, "ok"},
		{"ready", func() bool { return true }, "/healthz/readiness", http.StatusOK, "ok"},
		{"not ready", func() bool { return false }, "/healthz/readiness", http.StatusServiceUnavailable, "not ready"},
		{"nil checker is ready", nil, "/healthz/readiness", http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := startServer(t, tt.ready)

			status, body := get(t, s, tt.path)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(body))
		})
	}
}

func TestServer_ReadinessFollowsChecker(t *testing.T) {
	var loaded atomic.Bool
	s, _ := startServer(t, loaded.Load)

	status, _ := get(t, s, "/healthz/readiness")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	loaded.Store(true)
	status, _ = get(t, s, "/healthz/readiness")
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s, _ := startServer(t, nil)

	s.Metrics().PluginLoaded("lua")
	s.Metrics().PluginLoaded("lua")
	s.Metrics().StorageSaved("notes", nil)

	status, body := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, status)

	assert.Contains(t, body, "# HELP")
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, "process_")
	assert.Contains(t, body, `plughost_plugins_loaded_total{runtime="lua"} 2`)
	assert.Contains(t, body, `plughost_storage_saves_total{namespace="notes",status="success"} 1`)
}

func TestServer_DoubleStartFails(t *testing.T) {
	s, _ := startServer(t, nil)

	_, err := s.Start()
	errutil.AssertErrorCode(t, err, "OBSERVABILITY_ALREADY_RUNNING")
}

func TestServer_ListenFailure(t *testing.T) {
	first, _ := startServer(t, nil)

	s := NewServer(first.Addr(), nil)
	_, err := s.Start()
	errutil.AssertErrorCode(t, err, "OBSERVABILITY_LISTEN_FAILED")

	require.NoError(t, s.Stop(context.Background()), "a failed start leaves nothing to stop")
}

func TestServer_StopWithoutStart(t *testing.T) {
	s := NewServer("127.0.0.1:0", nil)
	assert.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, s.Addr())
}

func TestServer_ErrorChannel(t *testing.T) {
	t.Run("reports serve errors", func(t *testing.T) {
		s, errCh := startServer(t, nil)
		require.NoError(t, s.listener.Close())

		select {
		case err := <-errCh:
			assert.Error(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("serve error was not reported")
		}
	})

	t.Run("closes on shutdown", func(t *testing.T) {
		s, errCh := startServer(t, nil)
		require.NoError(t, s.Stop(context.Background()))

		select {
		case err, ok := <-errCh:
			assert.False(t, ok && err != nil, "unexpected error: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatal("error channel did not close")
		}
	})
}
