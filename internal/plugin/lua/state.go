// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package lua loads plugin units written in Lua. Each unit runs in its own
// sandboxed state.
package lua

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// Limits applied to every plugin state unless overridden.
const (
	DefaultCallStackSize = 256
	DefaultRegistrySize  = 16 * 1024
)

type library struct {
	name string
	open lua.LGFunction
}

// sandboxLibraries are opened in every state. os, io, debug, channel,
// coroutine and package are not.
func sandboxLibraries() []library {
	return []library{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// blockedGlobals reach the filesystem, compile arbitrary chunks, or bypass
// the module system.
var blockedGlobals = []string{"dofile", "loadfile", "loadstring", "load", "require", "module", "collectgarbage"}

// StateFactory creates sandboxed Lua states.
type StateFactory struct {
	libraries     []library
	callStackSize int
	registrySize  int
}

// StateOption configures a StateFactory.
type StateOption func(*StateFactory)

// WithCallStackSize bounds Lua call depth. Values below 1 are ignored.
func WithCallStackSize(n int) StateOption {
	return func(f *StateFactory) {
		if n > 0 {
			f.callStackSize = n
		}
	}
}

// WithRegistrySize sets the initial value stack size. Values below 1 are
// ignored.
func WithRegistrySize(n int) StateOption {
	return func(f *StateFactory) {
		if n > 0 {
			f.registrySize = n
		}
	}
}

// NewStateFactory creates a state factory.
func NewStateFactory(opts ...StateOption) *StateFactory {
	f := &StateFactory{
		libraries:     sandboxLibraries(),
		callStackSize: DefaultCallStackSize,
		registrySize:  DefaultRegistrySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewState creates a state with only the sandbox libraries opened and the
// blocked globals removed. print writes to logger at debug level, or is
// discarded when logger is nil. The state is bound to ctx until the caller
// removes it.
func (f *StateFactory) NewState(ctx context.Context, logger *slog.Logger) (*lua.LState, error) {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:        true,
		CallStackSize:       f.callStackSize,
		RegistrySize:        f.registrySize,
		IncludeGoStackTrace: false,
	})

	for _, lib := range f.libraries {
		err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.open), NRet: 0, Protect: true}, lua.LString(lib.name))
		if err != nil {
			L.Close()
			return nil, oops.In("lua").With("library", lib.name).Wrapf(err, "failed to open library %s", lib.name)
		}
	}

	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(printTo(logger)))

	if ctx != nil {
		L.SetContext(ctx)
	}
	return L, nil
}

func printTo(logger *slog.Logger) lua.LGFunction {
	return func(L *lua.LState) int {
		if logger == nil {
			return 0
		}
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		logger.Debug("lua print", "message", strings.Join(parts, "\t"))
		return 0
	}
}
