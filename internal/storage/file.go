// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/oops"
)

// FileBackend stores the document as a JSON file.
//
// Saves write a temporary file next to the document, fsync it and rename it
// over the original, so a crash mid-write leaves either the old or the new
// document on disk.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for the JSON document at path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Path returns the document location.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the document. A missing or empty file is an empty document.
func (b *FileBackend) Load(_ context.Context) (Document, error) {
	data, err := os.ReadFile(filepath.Clean(b.path))
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return nil, oops.Code("STORAGE_READ_FAILED").In("storage").With("path", b.path).Wrap(err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Document{}, nil
	}

	doc := Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.Code("STORAGE_DOCUMENT_CORRUPT").
			In("storage").
			With("path", b.path).
			Hint("the document must be a JSON object keyed by plugin name").
			Wrap(err)
	}
	return doc, nil
}

// Save writes doc atomically. Each namespace's bytes are written verbatim,
// one per line, in key order.
func (b *FileBackend) Save(_ context.Context, doc Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return oops.Code("STORAGE_ENCODE_FAILED").In("storage").With("path", b.path).Wrap(err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").In("storage").With("path", b.path).Wrap(err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(b.path)+"-*.tmp")
	if err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").In("storage").With("path", b.path).Wrap(err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()        //nolint:errcheck // best-effort cleanup; write error takes precedence
			_ = os.Remove(tmpName) //nolint:errcheck // best-effort cleanup
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").In("storage").With("path", tmpName).Wrap(err)
	}
	if err := tmp.Sync(); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").In("storage").With("path", tmpName).Wrap(err)
	}
	if err := tmp.Close(); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").In("storage").With("path", tmpName).Wrap(err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").In("storage").With("path", b.path).Wrap(err)
	}
	committed = true
	return nil
}

func encodeDocument(doc Document) ([]byte, error) {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteString("{")
	for i, name := range names {
		raw := doc[name]
		if !json.Valid(raw) {
			return nil, oops.With("namespace", name).Errorf("namespace %q is not valid JSON", name)
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(raw)
	}
	if len(names) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
