// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_OopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("PLUGIN_LOAD_FAILED").With("dir", "broken").Errorf("constructor failed")
	errutil.LogError(logger, "failed to load plugin", err, "root", "/plugins")

	entry := decode(t, &buf)
	assert.Equal(t, "failed to load plugin", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "PLUGIN_LOAD_FAILED", entry["code"])
	assert.Equal(t, "/plugins", entry["root"])
	assert.Contains(t, entry["error"], "constructor failed")
	ctx, ok := entry["context"].(map[string]any)
	require.True(t, ok, "context should be an object")
	assert.Equal(t, "broken", ctx["dir"])
}

func TestLogError_StandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(logger, "boom", errors.New("plain"))

	entry := decode(t, &buf)
	assert.Equal(t, "plain", entry["error"])
	assert.NotContains(t, entry, "code")
}

func TestLogWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogWarn(logger, "recovered", errors.New("hook failed"))

	entry := decode(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
}

func TestGuard(t *testing.T) {
	t.Run("returns fn error", func(t *testing.T) {
		want := errors.New("nope")
		assert.ErrorIs(t, errutil.Guard(func() error { return want }), want)
	})

	t.Run("nil on success", func(t *testing.T) {
		assert.NoError(t, errutil.Guard(func() error { return nil }))
	})

	t.Run("panic becomes error", func(t *testing.T) {
		err := errutil.Guard(func() error { panic("kaboom") })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "kaboom")
		errutil.AssertErrorContext(t, err, "panic", "kaboom")
	})
}
