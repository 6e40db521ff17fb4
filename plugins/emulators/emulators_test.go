// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package emulators_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/internal/storage"
	"github.com/holomush/plughost/pkg/pluginsdk"
	"github.com/holomush/plughost/plugins/emulators"
)

type pane struct{}

func (pane) ID() string { return "main" }
func (pane) Width() int { return 0 }

func render(t *testing.T, doc storage.Document) string {
	t.Helper()
	reg, err := storage.Open(context.Background(), storage.NewMemoryBackend(doc))
	require.NoError(t, err)

	p, err := emulators.New(pluginsdk.NewContext(reg))
	require.NoError(t, err)
	reg.RegisterPluginStorage(emulators.Name, pluginsdk.DefaultStorageOf(p))

	v, err := p.CreateView(pane{})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, v.Render(&buf))
	return buf.String()
}

func TestEmulators_Empty(t *testing.T) {
	assert.Equal(t, "Emulators\n=========\nNothing here yet\n", render(t, nil))
}

func TestEmulators_List(t *testing.T) {
	out := render(t, storage.Document{
		"emulators": []byte(`{"rom_dir":"/roms","emulators":["mednafen",{"name":"mGBA","system":"GBA"},{"name":"dosbox"}]}`),
	})

	assert.Equal(t, "Emulators\n=========\nrom_dir:  /roms\n  - mednafen\n  - mGBA (GBA)\n  - dosbox\n", out)
}
