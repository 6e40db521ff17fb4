// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/internal/plugin"
)

func TestRun_WritesThenChecks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "plugin.schema.json")
	var out bytes.Buffer

	require.Error(t, run([]string{"--check", "-o", path}, &out), "missing file fails the check")

	require.NoError(t, run([]string{"-o", path}, &out))
	assert.Contains(t, out.String(), "Generated "+path)

	want, err := plugin.GenerateSchema()
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, run([]string{"--check", "-o", path}, &out))
	assert.Contains(t, out.String(), "is up to date")
}

func TestRun_CheckDetectsStaleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugin.schema.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	err := run([]string{"--check", "--output", path}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale")
}

func TestRun_BadFlag(t *testing.T) {
	assert.Error(t, run([]string{"--nope"}, &bytes.Buffer{}))
}
