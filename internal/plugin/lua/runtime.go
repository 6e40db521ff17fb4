// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	plugins "github.com/holomush/plughost/internal/plugin"
	"github.com/holomush/plughost/internal/plugin/hostfunc"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Runtime loads units whose manifest type is lua.
//
// The entry script must return a plugin table or a sequence of them. A
// plugin table has:
//
//	plugin_name          string, required
//	get_name / display_name
//	                     function returning a string, or a string; required
//	create_view(parent)  required
//	get_default_storage() optional
//	on_view_enter(view)  optional
//	init(ctx)            optional, runs before the other fields are read
//
// Functions are called method-style with the plugin table as self.
//
// A unit owns its plugins' namespaces only once every plugin table of the
// unit has been constructed, so init and get_default_storage cannot call
// storage_get or storage_save, and snapshot needs a storage.read grant like
// any other namespace. Defaults are registered after the load, so there is
// nothing of the unit's own to read yet.
type Runtime struct {
	factory *StateFactory
	funcs   *hostfunc.Functions
}

var _ plugins.Runtime = (*Runtime)(nil)

// NewRuntime creates a Lua runtime. funcs may be nil, in which case scripts
// get no host module.
func NewRuntime(funcs *hostfunc.Functions) *Runtime {
	return &Runtime{
		factory: NewStateFactory(),
		funcs:   funcs,
	}
}

// Type implements plugins.Runtime.
func (r *Runtime) Type() plugins.Type { return plugins.TypeLua }

// Load implements plugins.Runtime.
func (r *Runtime) Load(ctx context.Context, unit plugins.Unit, manifest *plugins.Manifest, actx *pluginsdk.Context) ([]pluginsdk.Plugin, error) {
	entry := filepath.Join(unit.Dir, filepath.Clean(manifest.Lua.Entry))
	code, err := os.ReadFile(entry) //nolint:gosec // entry is validated to stay inside the unit directory
	if err != nil {
		return nil, oops.In("lua").With("dir", unit.Name).With("path", entry).
			Hint("failed to read entry file").Wrap(err)
	}

	L, err := r.factory.NewState(ctx, unitLogger(actx, unit))
	if err != nil {
		return nil, err
	}

	scope := hostfunc.NewScope(unit.Name)
	st := &state{L: L}
	if r.funcs != nil {
		if err := r.funcs.Enforcer().SetGrants(unit.Name, manifest.Capabilities); err != nil {
			L.Close()
			return nil, err
		}
		r.funcs.Register(L, scope)
		st.onClose = func() { r.funcs.Enforcer().RemoveGrants(unit.Name) }
	}

	ps, err := r.instantiate(st, unit, manifest.Lua.Entry, code, actx)
	L.RemoveContext()
	if err != nil {
		st.close()
		return nil, oops.In("lua").With("dir", unit.Name).Wrap(err)
	}
	if len(ps) == 0 {
		st.close()
		return nil, nil
	}

	out := make([]pluginsdk.Plugin, len(ps))
	for i, p := range ps {
		scope.Own(p.name)
		out[i] = p
	}
	st.refs = len(ps)
	return out, nil
}

func (r *Runtime) instantiate(st *state, unit plugins.Unit, chunkName string, code []byte, actx *pluginsdk.Context) ([]*Plugin, error) {
	fn, err := st.L.Load(bytes.NewReader(code), chunkName)
	if err != nil {
		return nil, oops.With("operation", "compile").Wrap(err)
	}
	st.L.Push(fn)
	if err := st.L.PCall(0, 1, nil); err != nil {
		return nil, oops.With("operation", "run entry script").Wrap(err)
	}
	ret := st.L.Get(-1)
	st.L.Pop(1)

	tables, err := pluginTables(unit, ret)
	if err != nil {
		return nil, err
	}

	ps := make([]*Plugin, 0, len(tables))
	for _, tbl := range tables {
		p, err := newPlugin(st, tbl, actx)
		if err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, nil
}

// pluginTables accepts a single plugin table or a sequence of them.
func pluginTables(unit plugins.Unit, v lua.LValue) ([]*lua.LTable, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return nil, pluginsdk.ContractViolation(unit.Name, "entry script must return a plugin table or a list of them, got %s", v.Type())
	}
	if tbl.RawGetString("plugin_name") != lua.LNil {
		return []*lua.LTable{tbl}, nil
	}

	n := tbl.MaxN()
	if n == 0 {
		if k, _ := tbl.Next(lua.LNil); k != lua.LNil {
			return nil, pluginsdk.ContractViolation(unit.Name, "returned table has no plugin_name")
		}
		return nil, nil
	}

	out := make([]*lua.LTable, 0, n)
	for i := 1; i <= n; i++ {
		item, ok := tbl.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, pluginsdk.ContractViolation(unit.Name, "entry %d of the returned list is not a table", i)
		}
		out = append(out, item)
	}
	return out, nil
}

// state is one unit's Lua state, shared by the unit's plugins and closed
// when the last of them is closed.
type state struct {
	L       *lua.LState
	refs    int
	closed  bool
	onClose func()
}

func (s *state) release() {
	s.refs--
	if s.refs <= 0 {
		s.close()
	}
}

func (s *state) close() {
	if s.closed {
		return
	}
	s.closed = true
	s.L.Close()
	if s.onClose != nil {
		s.onClose()
	}
}

// call invokes tbl[method](tbl, args...) and returns nret results.
func (s *state) call(tbl *lua.LTable, method string, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if s.closed {
		return nil, oops.In("lua").With("method", method).Errorf("lua state is closed")
	}
	fn := tbl.RawGetString(method)
	if fn.Type() != lua.LTFunction {
		return nil, oops.In("lua").With("method", method).Errorf("%s is not a function", method)
	}

	top := s.L.GetTop()
	if err := s.L.CallByParam(lua.P{Fn: fn, NRet: nret, Protect: true}, append([]lua.LValue{tbl}, args...)...); err != nil {
		s.L.SetTop(top)
		return nil, oops.In("lua").With("method", method).Wrap(err)
	}
	rets := make([]lua.LValue, nret)
	for i := range rets {
		rets[i] = s.L.Get(top + 1 + i)
	}
	s.L.SetTop(top)
	return rets, nil
}

func unitLogger(actx *pluginsdk.Context, unit plugins.Unit) *slog.Logger {
	logger := slog.Default()
	if actx != nil && actx.Logger != nil {
		logger = actx.Logger
	}
	return logger.With("unit", unit.Name)
}

func hasFunction(tbl *lua.LTable, name string) bool {
	return tbl.RawGetString(name).Type() == lua.LTFunction
}
