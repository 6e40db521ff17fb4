// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package storage provides the namespaced persistence registry plugins use.
//
// The backing document holds one top-level namespace per plugin name. The
// registry decodes a namespace only when its owner touches it; everything
// else stays as the raw bytes it was loaded with, so saving one plugin's data
// never rewrites another's.
package storage

import (
	"context"
	"encoding/json"
	"sync"
)

// Document is the persisted form: namespace name to its raw JSON object.
type Document map[string]json.RawMessage

// Clone returns a copy of d whose raw values do not alias d's.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Backend loads and saves the whole document.
type Backend interface {
	// Load returns the persisted document. A backend with nothing stored
	// returns an empty document, not an error.
	Load(ctx context.Context) (Document, error)

	// Save persists the whole document.
	Save(ctx context.Context, doc Document) error
}

// MemoryBackend keeps the document in memory. It backs tests and is the
// fallback when the configured document cannot be read.
type MemoryBackend struct {
	doc   Document
	saves int
	mu    sync.Mutex
}

// NewMemoryBackend creates a memory backend seeded with initial.
func NewMemoryBackend(initial Document) *MemoryBackend {
	if initial == nil {
		initial = Document{}
	}
	return &MemoryBackend{doc: initial.Clone()}
}

// Load returns a copy of the stored document.
func (b *MemoryBackend) Load(_ context.Context) (Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Clone(), nil
}

// Save replaces the stored document with a copy of doc.
func (b *MemoryBackend) Save(_ context.Context, doc Document) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = doc.Clone()
	b.saves++
	return nil
}

// Document returns a copy of the stored document.
func (b *MemoryBackend) Document() Document {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.doc.Clone()
}

// Saves returns how many times Save was called.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
