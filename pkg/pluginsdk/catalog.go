// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"sort"
	"sync"

	"github.com/samber/oops"
)

// Factory constructs a plugin bound to the shared application context.
type Factory func(actx *Context) (Plugin, error)

// Catalog is the build-time registry of plugin factories. Manifests refer to
// entries by id; nothing is discovered by scanning types at runtime.
type Catalog struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under id. Registering the same id twice fails.
func (c *Catalog) Register(id string, f Factory) error {
	if id == "" {
		return oops.In("catalog").Errorf("factory id cannot be empty")
	}
	if f == nil {
		return oops.In("catalog").With("factory", id).Errorf("factory cannot be nil")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.factories[id]; exists {
		return oops.In("catalog").With("factory", id).Errorf("factory %q already registered", id)
	}
	c.factories[id] = f
	return nil
}

// MustRegister is Register for package initialisation; it panics on error.
func (c *Catalog) MustRegister(id string, f Factory) {
	if err := c.Register(id, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under id.
func (c *Catalog) Lookup(id string) (Factory, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.factories[id]
	return f, ok
}

// IDs returns all registered ids, sorted.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.factories))
	for id := range c.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
