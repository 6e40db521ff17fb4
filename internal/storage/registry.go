// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/plughost/pkg/errutil"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Compile-time interface check.
var _ pluginsdk.Storage = (*Registry)(nil)

// Recorder observes saves for metrics.
type Recorder interface {
	StorageSaved(namespace string, err error)
}

// Registry partitions the backing document into one namespace per plugin.
//
// The registry's own bookkeeping is guarded by a mutex. Namespace maps
// returned by GetPluginData are not: they belong to the UI goroutine, which
// is also the only caller of RegisterPluginStorage and SavePluginData.
// Background readers use Snapshot.
type Registry struct {
	backend Backend
	logger  *slog.Logger
	metrics Recorder

	// raw holds every persisted namespace as last loaded or saved.
	raw Document
	// live holds decoded namespaces handed out to plugins.
	live map[string]map[string]any
	mu   sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// WithMetrics sets the save recorder.
func WithMetrics(m Recorder) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// Open loads the backend's document and returns a registry over it.
func Open(ctx context.Context, backend Backend, opts ...Option) (*Registry, error) {
	doc, err := backend.Load(ctx)
	if err != nil {
		return nil, oops.Code("STORAGE_LOAD_FAILED").In("storage").Wrap(err)
	}
	if doc == nil {
		doc = Document{}
	}

	r := &Registry{
		backend: backend,
		logger:  slog.Default(),
		raw:     doc,
		live:    make(map[string]map[string]any),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RegisterPluginStorage merges defaults into name's namespace. Keys already
// present, persisted or set earlier in the session, are never overwritten.
// Defaults are deep-copied, so the caller's map is never shared.
func (r *Registry) RegisterPluginStorage(name string, defaults map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ns := r.namespaceLocked(name, false)
	for k, v := range defaults {
		if _, exists := ns[k]; !exists {
			ns[k] = DeepCopy(v)
		}
	}
}

// GetPluginData returns name's namespace. A name that was never registered
// gets an empty namespace created on demand.
func (r *Registry) GetPluginData(name string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namespaceLocked(name, true)
}

// SavePluginData replaces name's namespace with a copy of data and persists
// the whole document. Every other namespace is written back exactly as it
// was loaded, including those of plugins that are not loaded.
func (r *Registry) SavePluginData(ctx context.Context, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return oops.Code("STORAGE_ENCODE_FAILED").In("storage").With("namespace", name).Wrap(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc := make(Document, len(r.raw)+1)
	for k, v := range r.raw {
		doc[k] = v
	}
	doc[name] = encoded

	err = r.backend.Save(ctx, doc)
	if r.metrics != nil {
		r.metrics.StorageSaved(name, err)
	}
	if err != nil {
		return oops.In("storage").With("namespace", name).Wrap(err)
	}

	r.raw = doc
	r.live[name] = copyMap(data)
	return nil
}

// Snapshot returns a deep copy of name's namespace without creating it.
func (r *Registry) Snapshot(name string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ns, ok := r.live[name]; ok {
		return copyMap(ns)
	}
	if raw, ok := r.raw[name]; ok {
		if ns, err := decodeNamespace(raw); err == nil {
			return ns
		}
	}
	return map[string]any{}
}

// Namespaces lists persisted and live namespace names, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(r.raw)+len(r.live))
	for k := range r.raw {
		seen[k] = struct{}{}
	}
	for k := range r.live {
		seen[k] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// namespaceLocked returns the live namespace for name, decoding or creating
// it as needed. r.mu must be held.
func (r *Registry) namespaceLocked(name string, logCreate bool) map[string]any {
	if ns, ok := r.live[name]; ok {
		return ns
	}

	ns := map[string]any{}
	if raw, ok := r.raw[name]; ok {
		decoded, err := decodeNamespace(raw)
		if err != nil {
			// The raw bytes stay in the document until the owner saves.
			errutil.LogWarn(r.logger, "persisted namespace is not an object, starting empty", err,
				"namespace", name)
		} else {
			ns = decoded
		}
	} else if logCreate {
		r.logger.Debug("creating empty storage namespace",
			"namespace", name,
			"code", pluginsdk.CodeNamespaceCreated)
	}

	r.live[name] = ns
	return ns
}

func decodeNamespace(raw json.RawMessage) (map[string]any, error) {
	var ns map[string]any
	if err := json.Unmarshal(raw, &ns); err != nil {
		return nil, oops.Code("STORAGE_NAMESPACE_INVALID").In("storage").Wrap(err)
	}
	if ns == nil {
		ns = map[string]any{}
	}
	return ns, nil
}
