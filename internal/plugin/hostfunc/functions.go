// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package hostfunc provides host functions to Lua plugins.
//
// Functions are published as the global "host" table. A unit may read and
// write the namespaces of the plugins it provides. Reading any other
// namespace requires a storage.read.<namespace> grant.
//
//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
package hostfunc

import (
	"context"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/plughost/internal/plugin/capability"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// ModuleName is the Lua global the host functions live under.
const ModuleName = "host"

// Functions provides host functions to Lua plugins.
type Functions struct {
	storage  pluginsdk.Storage
	enforcer *capability.Enforcer
	logger   *slog.Logger
}

// Option configures Functions.
type Option func(*Functions)

// WithLogger sets the logger plugin log calls are written to.
func WithLogger(l *slog.Logger) Option {
	return func(f *Functions) {
		f.logger = l
	}
}

// New creates host functions. A nil enforcer denies every cross-namespace
// read.
func New(storage pluginsdk.Storage, enforcer *capability.Enforcer, opts ...Option) *Functions {
	if enforcer == nil {
		enforcer = capability.NewEnforcer()
	}
	f := &Functions{
		storage:  storage,
		enforcer: enforcer,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Enforcer returns the enforcer used for grant checks.
func (f *Functions) Enforcer() *capability.Enforcer {
	return f.enforcer
}

// Scope identifies the unit a Lua state belongs to and the namespaces it
// owns. Ownership is filled in once the unit's plugins are known.
type Scope struct {
	Unit  string
	owned map[string]bool
	mu    sync.RWMutex
}

// NewScope creates a scope for unit with no owned namespaces.
func NewScope(unit string) *Scope {
	return &Scope{Unit: unit, owned: make(map[string]bool)}
}

// Own marks namespace as belonging to the unit.
func (s *Scope) Own(namespace string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owned[namespace] = true
}

// Owns reports whether the unit owns namespace.
func (s *Scope) Owns(namespace string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owned[namespace]
}

// Register installs the host module into ls.
func (f *Functions) Register(ls *lua.LState, scope *Scope) {
	mod := ls.NewTable()

	ls.SetField(mod, "log", ls.NewFunction(f.logFn(scope)))
	ls.SetField(mod, "new_id", ls.NewFunction(newIDFn))

	ls.SetField(mod, "storage_get", ls.NewFunction(f.owned(scope, f.storageGetFn)))
	ls.SetField(mod, "storage_save", ls.NewFunction(f.owned(scope, f.storageSaveFn)))
	ls.SetField(mod, "snapshot", ls.NewFunction(f.snapshotFn(scope)))

	registerFmt(ls, mod)

	ls.SetGlobal(ModuleName, mod)
}

// owned guards fn so it only runs for a namespace the unit owns.
func (f *Functions) owned(scope *Scope, fn func(L *lua.LState, namespace string) int) lua.LGFunction {
	return func(L *lua.LState) int {
		namespace := L.CheckString(1)
		if !scope.Owns(namespace) {
			L.RaiseError("access denied: unit %s does not own namespace %s", scope.Unit, namespace)
			return 0
		}
		if f.storage == nil {
			return pushError(L, "storage not available")
		}
		return fn(L, namespace)
	}
}

func (f *Functions) logFn(scope *Scope) lua.LGFunction {
	return func(L *lua.LState) int {
		level := L.CheckString(1)
		message := L.CheckString(2)

		logger := f.logger.With("unit", scope.Unit)
		switch level {
		case "debug":
			logger.Debug(message)
		case "warn":
			logger.Warn(message)
		case "error":
			logger.Error(message)
		default:
			logger.Info(message)
		}
		return 0
	}
}

func newIDFn(L *lua.LState) int {
	L.Push(lua.LString(ulid.Make().String()))
	return 1
}

// storageGetFn returns a copy of the namespace. Changes reach the store
// only through storage_save.
func (f *Functions) storageGetFn(L *lua.LState, namespace string) int {
	return pushSuccess(L, ToLua(L, f.storage.GetPluginData(namespace)))
}

func (f *Functions) storageSaveFn(L *lua.LState, namespace string) int {
	tbl := L.CheckTable(2)

	v, err := ToGo(tbl)
	if err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	data, ok := v.(map[string]any)
	if !ok {
		// An empty table converts as an empty map; a pure array does not.
		L.Push(lua.LString("namespace data must be a table with string keys"))
		return 1
	}
	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := f.storage.SavePluginData(ctx, namespace, data); err != nil {
		f.logger.Warn("storage_save failed", "namespace", namespace, "error", err)
		L.Push(lua.LString(err.Error()))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func (f *Functions) snapshotFn(scope *Scope) lua.LGFunction {
	return func(L *lua.LState) int {
		namespace := L.CheckString(1)
		if !scope.Owns(namespace) && !f.enforcer.CanRead(scope.Unit, namespace) {
			L.RaiseError("capability denied: %s requires %s%s", scope.Unit, capability.StorageRead, namespace)
			return 0
		}
		if f.storage == nil {
			return pushError(L, "storage not available")
		}
		return pushSuccess(L, ToLua(L, f.storage.Snapshot(namespace)))
	}
}
