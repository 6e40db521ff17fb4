// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres stores the plugin document in PostgreSQL, one row per
// namespace.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/plughost/internal/storage"
)

// poolIface is the subset of pgxpool.Pool the backend uses. pgxmock satisfies
// it in unit tests.
type poolIface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// Backend implements storage.Backend on a plugin_namespaces table.
type Backend struct {
	pool poolIface
}

var _ storage.Backend = (*Backend)(nil)

// NewBackend wraps an existing pool.
func NewBackend(pool poolIface) *Backend {
	return &Backend{pool: pool}
}

// Open connects to dsn and waits for the server to answer a ping.
func Open(ctx context.Context, dsn string) (*Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("STORAGE_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	b := NewBackend(pool)
	if err := b.waitReady(ctx, 5, 200*time.Millisecond); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) waitReady(ctx context.Context, attempts uint64, base time.Duration) error {
	backoff := retry.WithMaxRetries(attempts, retry.NewExponential(base))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := b.pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return oops.Code("STORAGE_CONNECT_FAILED").With("operation", "ping").Wrap(err)
	}
	return nil
}

// Close releases the pool.
func (b *Backend) Close() {
	b.pool.Close()
}

// Load reads every namespace row. A database that has not been migrated yet
// yields an empty document.
func (b *Backend) Load(ctx context.Context) (storage.Document, error) {
	rows, err := b.pool.Query(ctx, `SELECT name, data FROM plugin_namespaces`)
	if err != nil {
		if isUndefinedTable(err) {
			return storage.Document{}, nil
		}
		return nil, oops.Code("STORAGE_READ_FAILED").With("operation", "load namespaces").Wrap(err)
	}
	defer rows.Close()

	doc := storage.Document{}
	for rows.Next() {
		var name string
		var data []byte
		if err := rows.Scan(&name, &data); err != nil {
			return nil, oops.Code("STORAGE_READ_FAILED").With("operation", "scan namespace row").Wrap(err)
		}
		doc[name] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		if isUndefinedTable(err) {
			return storage.Document{}, nil
		}
		return nil, oops.Code("STORAGE_READ_FAILED").With("operation", "iterate namespaces").Wrap(err)
	}
	return doc, nil
}

// Save upserts every namespace of doc in one transaction. Rows for
// namespaces not present in doc are left alone.
func (b *Backend) Save(ctx context.Context, doc storage.Document) (err error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("operation", "begin").Wrap(err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx) //nolint:errcheck // rollback after failure; original error wins
		}
	}()

	for name, raw := range doc {
		if _, err := tx.Exec(ctx,
			`INSERT INTO plugin_namespaces (name, data, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (name) DO UPDATE SET data = $2, updated_at = now()`,
			name, []byte(raw)); err != nil {
			return oops.Code("STORAGE_WRITE_FAILED").With("namespace", name).Wrap(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("operation", "commit").Wrap(err)
	}
	committed = true
	return nil
}

func isUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UndefinedTable
}
