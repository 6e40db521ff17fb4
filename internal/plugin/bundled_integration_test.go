// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package plugin_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/tidwall/gjson"

	plugins "github.com/holomush/plughost/internal/plugin"
	"github.com/holomush/plughost/internal/plugin/capability"
	"github.com/holomush/plughost/internal/plugin/hostfunc"
	pluginlua "github.com/holomush/plughost/internal/plugin/lua"
	"github.com/holomush/plughost/internal/storage"
	"github.com/holomush/plughost/internal/view"
	"github.com/holomush/plughost/pkg/pluginsdk"
	builtins "github.com/holomush/plughost/plugins"
)

type screen struct{ width int }

func (s screen) ID() string { return "main" }
func (s screen) Width() int { return s.width }

var _ = Describe("Bundled plugins", func() {
	var (
		ctx     context.Context
		docPath string
		reg     *storage.Registry
		loader  *plugins.Loader
		loaded  []pluginsdk.Plugin
	)

	root := filepath.Join("..", "..", "plugins")

	BeforeEach(func() {
		ctx = context.Background()
		docPath = filepath.Join(GinkgoT().TempDir(), "storage.json")
		Expect(os.WriteFile(docPath, []byte(`{"settings":{"username":"Alice","theme":"Dark"},"library":{"games":[{"title":"Doom","system":"DOS"}]},"retired":{"keep":true}}`), 0o600)).To(Succeed())

		var err error
		reg, err = storage.Open(ctx, storage.NewFileBackend(docPath))
		Expect(err).NotTo(HaveOccurred())

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		funcs := hostfunc.New(reg, capability.NewEnforcer(), hostfunc.WithLogger(logger))
		loader, err = plugins.NewLoader(
			plugins.WithLogger(logger),
			plugins.WithRuntime(plugins.NewBuiltinRuntime(builtins.Catalog())),
			plugins.WithRuntime(pluginlua.NewRuntime(funcs)),
		)
		Expect(err).NotTo(HaveOccurred())

		loaded = loader.DiscoverAndLoad(ctx, root, pluginsdk.NewContext(reg, pluginsdk.WithLogger(logger)))
	})

	AfterEach(func() {
		loader.CloseAll()
	})

	It("loads every bundled unit in directory order", func() {
		names := make([]string, 0, len(loaded))
		for _, p := range loaded {
			names = append(names, p.PluginName())
		}
		Expect(names).To(Equal([]string{"dashboard", "emulators", "home", "library", "notes", "reminders", "settings"}))
	})

	It("keeps persisted settings over defaults", func() {
		Expect(reg.GetPluginData("settings")).To(HaveKeyWithValue("username", "Alice"))
		Expect(reg.GetPluginData("settings")).To(HaveKeyWithValue("theme", "Dark"))
		Expect(reg.GetPluginData("settings")).To(HaveKeyWithValue("language", "en"))
	})

	It("activates every view and preserves foreign namespaces on save", func() {
		d := view.NewDispatcher(view.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		for _, p := range loaded {
			v, err := d.Activate(ctx, p, screen{width: 60})
			Expect(err).NotTo(HaveOccurred(), p.PluginName())

			var buf bytes.Buffer
			Expect(v.Render(&buf)).To(Succeed())
			Expect(buf.String()).NotTo(BeEmpty())
		}
		Expect(d.Active()).To(Equal("settings"))

		data, err := os.ReadFile(docPath)
		Expect(err).NotTo(HaveOccurred())
		Expect(gjson.GetBytes(data, "home.visits").Int()).To(Equal(int64(1)))
		Expect(gjson.GetBytes(data, "notes.visits").Int()).To(Equal(int64(1)))
		Expect(gjson.GetBytes(data, "retired").Raw).To(Equal(`{"keep":true}`))
	})

	It("lets the Lua unit read granted namespaces", func() {
		var notes pluginsdk.Plugin
		for _, p := range loaded {
			if p.PluginName() == "notes" {
				notes = p
			}
		}
		Expect(notes).NotTo(BeNil())

		v, err := notes.CreateView(screen{width: 60})
		Expect(err).NotTo(HaveOccurred())
		var buf bytes.Buffer
		Expect(v.Render(&buf)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("Alice"))
		Expect(buf.String()).To(ContainSubstring("Try the dashboard"))
	})
})
