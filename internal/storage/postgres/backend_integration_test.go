// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/plughost/internal/storage"
	"github.com/holomush/plughost/internal/storage/postgres"
)

var _ = Describe("Backend", func() {
	var (
		ctx       context.Context
		container *tcpostgres.PostgresContainer
		connStr   string
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		container, err = tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("plughost_test"),
			tcpostgres.WithUsername("plughost"),
			tcpostgres.WithPassword("plughost"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = container.Terminate(ctx)
	})

	It("treats an unmigrated database as empty", func() {
		b, err := postgres.Open(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
		defer b.Close()

		doc, err := b.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(doc).To(BeEmpty())
	})

	It("persists namespaces across registries", func() {
		m, err := postgres.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Up()).To(Succeed())
		v, dirty, err := m.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint(1)))
		Expect(dirty).To(BeFalse())
		Expect(m.Close()).To(Succeed())

		b, err := postgres.Open(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())
		defer b.Close()

		first, err := storage.Open(ctx, b)
		Expect(err).NotTo(HaveOccurred())
		first.RegisterPluginStorage("settings", map[string]any{"username": "Player"})
		Expect(first.SavePluginData(ctx, "settings", map[string]any{"username": "Alice"})).To(Succeed())
		Expect(first.SavePluginData(ctx, "library", map[string]any{"games": []any{"zelda"}})).To(Succeed())

		second, err := storage.Open(ctx, b)
		Expect(err).NotTo(HaveOccurred())
		second.RegisterPluginStorage("settings", map[string]any{"username": "Player", "theme": "Light"})
		Expect(second.GetPluginData("settings")).To(Equal(map[string]any{"username": "Alice", "theme": "Light"}))
		Expect(second.GetPluginData("library")["games"]).To(Equal([]any{"zelda"}))
	})
})
