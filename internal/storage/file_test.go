// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/internal/storage"
	"github.com/holomush/plughost/pkg/errutil"
)

func TestFileBackend_LoadMissingFile(t *testing.T) {
	b := storage.NewFileBackend(filepath.Join(t.TempDir(), "nope.json"))

	doc, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestFileBackend_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))

	doc, err := storage.NewFileBackend(path).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestFileBackend_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`["not", "an", "object"]`), 0o600))

	_, err := storage.NewFileBackend(path).Load(context.Background())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "STORAGE_DOCUMENT_CORRUPT")
}

func TestFileBackend_SaveCreatesDirectoriesAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "plughost.json")
	b := storage.NewFileBackend(path)
	ctx := context.Background()

	doc := storage.Document{
		"settings": json.RawMessage(`{"username":"Alice"}`),
		"library":  json.RawMessage(`{"games":[]}`),
	}
	require.NoError(t, b.Save(ctx, doc))

	got, err := b.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"username":"Alice"}`, string(got["settings"]))
	assert.JSONEq(t, `{"games":[]}`, string(got["library"]))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileBackend_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := storage.NewFileBackend(filepath.Join(dir, "plughost.json"))

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Save(context.Background(), storage.Document{"n": json.RawMessage(`{}`)}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "plughost.json", entries[0].Name())
}

func TestFileBackend_SaveIntoUnwritableDirFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := filepath.Join(t.TempDir(), "ro")
	require.NoError(t, os.MkdirAll(dir, 0o500))

	err := storage.NewFileBackend(filepath.Join(dir, "plughost.json")).Save(context.Background(), storage.Document{})
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "STORAGE_WRITE_FAILED")
}

func TestFileBackend_SaveWritesNamespacesVerbatim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plughost.json")
	b := storage.NewFileBackend(path)

	doc := storage.Document{
		"library":  json.RawMessage(`{ "games" : [ 1.50 ] }`),
		"settings": json.RawMessage(`{"username":"Alice"}`),
	}
	require.NoError(t, b.Save(context.Background(), doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"library\": { \"games\" : [ 1.50 ] },\n  \"settings\": {\"username\":\"Alice\"}\n}\n", string(data))

	got, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{ "games" : [ 1.50 ] }`, string(got["library"]))
}

func TestFileBackend_SaveRejectsInvalidNamespace(t *testing.T) {
	b := storage.NewFileBackend(filepath.Join(t.TempDir(), "plughost.json"))

	err := b.Save(context.Background(), storage.Document{"bad": json.RawMessage(`{nope`)})
	errutil.AssertErrorCode(t, err, "STORAGE_ENCODE_FAILED")
}

func TestFileBackend_EmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plughost.json")
	require.NoError(t, storage.NewFileBackend(path).Save(context.Background(), storage.Document{}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}
