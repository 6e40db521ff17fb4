// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"strings"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/plughost/internal/plugin/hostfunc"
	"github.com/holomush/plughost/pkg/pluginsdk"
)

// Plugin adapts a Lua plugin table to the plugin contract.
type Plugin struct {
	st       *state
	tbl      *lua.LTable
	name     string
	display  string
	defaults map[string]any
}

var (
	_ pluginsdk.Plugin          = (*Plugin)(nil)
	_ pluginsdk.StorageDeclarer = (*Plugin)(nil)
	_ pluginsdk.ViewEnterer     = (*Plugin)(nil)
	_ pluginsdk.Closer          = (*Plugin)(nil)
)

func newPlugin(st *state, tbl *lua.LTable, actx *pluginsdk.Context) (*Plugin, error) {
	if hasFunction(tbl, "init") {
		if _, err := st.call(tbl, "init", 0, contextTable(st.L, actx)); err != nil {
			return nil, err
		}
	}

	name, ok := tbl.RawGetString("plugin_name").(lua.LString)
	if !ok {
		return nil, pluginsdk.ContractViolation("", "plugin_name must be a string")
	}
	p := &Plugin{st: st, tbl: tbl, name: string(name)}

	switch {
	case hasFunction(tbl, "get_name"):
		rets, err := st.call(tbl, "get_name", 1)
		if err != nil {
			return nil, err
		}
		display, ok := rets[0].(lua.LString)
		if !ok {
			return nil, pluginsdk.ContractViolation(p.name, "get_name must return a string")
		}
		p.display = string(display)
	default:
		display, ok := tbl.RawGetString("display_name").(lua.LString)
		if !ok {
			return nil, pluginsdk.ContractViolation(p.name, "get_name or display_name is required")
		}
		p.display = string(display)
	}

	if !hasFunction(tbl, "create_view") {
		return nil, pluginsdk.ContractViolation(p.name, "create_view is required")
	}

	p.defaults = map[string]any{}
	if hasFunction(tbl, "get_default_storage") {
		rets, err := st.call(tbl, "get_default_storage", 1)
		if err != nil {
			return nil, err
		}
		defaults, err := hostfunc.ToGo(rets[0])
		if err != nil {
			return nil, pluginsdk.ContractViolation(p.name, "get_default_storage: %v", err)
		}
		switch v := defaults.(type) {
		case map[string]any:
			p.defaults = v
		case nil:
		default:
			return nil, pluginsdk.ContractViolation(p.name, "get_default_storage must return a table with string keys")
		}
	}
	return p, nil
}

func contextTable(L *lua.LState, actx *pluginsdk.Context) *lua.LTable {
	tbl := L.NewTable()
	if actx == nil {
		return tbl
	}
	tbl.RawSetString("session_id", lua.LString(actx.SessionID.String()))
	tbl.RawSetString("locale", lua.LString(string(actx.Strings.Locale())))
	tbl.RawSetString("data_dir", lua.LString(actx.DataDir))
	return tbl
}

// PluginName implements pluginsdk.Plugin.
func (p *Plugin) PluginName() string { return p.name }

// DisplayName implements pluginsdk.Plugin.
func (p *Plugin) DisplayName() string { return p.display }

// DefaultStorage implements pluginsdk.StorageDeclarer.
func (p *Plugin) DefaultStorage() map[string]any { return p.defaults }

// CreateView calls create_view with a table describing parent.
func (p *Plugin) CreateView(parent pluginsdk.Container) (pluginsdk.View, error) {
	arg := p.st.L.NewTable()
	if parent != nil {
		arg.RawSetString("id", lua.LString(parent.ID()))
		arg.RawSetString("width", lua.LNumber(parent.Width()))
	}

	rets, err := p.st.call(p.tbl, "create_view", 1, arg)
	if err != nil {
		return nil, oops.With("plugin", p.name).Wrap(err)
	}
	v := &View{TextView: pluginsdk.NewTextView(parent), value: rets[0]}
	if err := v.refresh(); err != nil {
		return nil, oops.With("plugin", p.name).Wrap(err)
	}
	return v, nil
}

// OnViewEnter calls on_view_enter when the script defines it. A non-nil
// return value replaces the view's content.
func (p *Plugin) OnViewEnter(ctx context.Context, view pluginsdk.View) error {
	if !hasFunction(p.tbl, "on_view_enter") {
		return nil
	}
	v, ok := view.(*View)
	if !ok {
		return oops.With("plugin", p.name).Errorf("view %T was not created by this plugin", view)
	}

	p.st.L.SetContext(ctx)
	defer p.st.L.RemoveContext()

	rets, err := p.st.call(p.tbl, "on_view_enter", 1, v.value)
	if err != nil {
		return oops.With("plugin", p.name).Wrap(err)
	}
	if rets[0] != lua.LNil {
		v.value = rets[0]
	}
	return v.refresh()
}

// Close releases the plugin's share of the unit state.
func (p *Plugin) Close() error {
	p.st.release()
	return nil
}

// View is a text view backed by the value create_view returned: a string,
// a sequence of lines, or a table with title and lines fields. The view
// re-reads the value after every on_view_enter.
type View struct {
	*pluginsdk.TextView
	value lua.LValue
}

// Value returns the Lua value backing the view.
func (v *View) Value() lua.LValue { return v.value }

func (v *View) refresh() error {
	switch val := v.value.(type) {
	case lua.LString:
		v.SetLines(splitLines(string(val))...)
	case *lua.LTable:
		if title, ok := val.RawGetString("title").(lua.LString); ok {
			v.SetTitle(string(title))
		}
		src := lua.LValue(val)
		if lines := val.RawGetString("lines"); lines != lua.LNil {
			src = lines
		}
		switch l := src.(type) {
		case lua.LString:
			v.SetLines(splitLines(string(l))...)
		case *lua.LTable:
			var out []string
			for i := 1; i <= l.MaxN(); i++ {
				out = append(out, splitLines(l.RawGetInt(i).String())...)
			}
			v.SetLines(out...)
		default:
			return oops.Errorf("view lines must be a string or a list, got %s", src.Type())
		}
	default:
		return oops.Errorf("create_view must return a string or a table, got %s", v.value.Type())
	}
	return nil
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
