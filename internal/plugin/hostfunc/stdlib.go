// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package hostfunc

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/plughost/pkg/pluginsdk"
)

// registerFmt installs host.fmt, text helpers that return multi-line strings
// suitable as view lines.
func registerFmt(ls *lua.LState, mod *lua.LTable) {
	fmtMod := ls.NewTable()

	ls.SetField(fmtMod, "list", ls.NewFunction(fmtList))
	ls.SetField(fmtMod, "pairs", ls.NewFunction(fmtPairs))
	ls.SetField(fmtMod, "table", ls.NewFunction(fmtTable))
	ls.SetField(fmtMod, "separator", ls.NewFunction(fmtSeparator))

	ls.SetField(mod, "fmt", fmtMod)
}

func fmtList(ls *lua.LState) int {
	items := stringSlice(ls.CheckTable(1))
	ls.Push(lua.LString(strings.Join(pluginsdk.Bullet(items), "\n")))
	return 1
}

func fmtPairs(ls *lua.LState) int {
	v, err := ToGo(ls.CheckTable(1))
	if err != nil {
		ls.ArgError(1, err.Error())
		return 0
	}
	pairs, ok := v.(map[string]any)
	if !ok {
		ls.ArgError(1, "expected a table with string keys")
		return 0
	}
	ls.Push(lua.LString(strings.Join(pluginsdk.Pairs(pairs), "\n")))
	return 1
}

// fmtTable expects a table with optional "headers" and "rows" fields.
func fmtTable(ls *lua.LState) int {
	tbl := ls.CheckTable(1)

	var headers []string
	if h, ok := tbl.RawGetString("headers").(*lua.LTable); ok {
		headers = stringSlice(h)
	}
	var rows [][]string
	if r, ok := tbl.RawGetString("rows").(*lua.LTable); ok {
		for i := 1; i <= r.MaxN(); i++ {
			if row, ok := r.RawGetInt(i).(*lua.LTable); ok {
				rows = append(rows, stringSlice(row))
			}
		}
	}

	ls.Push(lua.LString(strings.Join(pluginsdk.Table(headers, rows), "\n")))
	return 1
}

func fmtSeparator(ls *lua.LState) int {
	ls.Push(lua.LString(pluginsdk.Separator(ls.OptInt(1, 0))))
	return 1
}

// stringSlice converts a Lua sequence into strings using Lua's tostring rules.
func stringSlice(tbl *lua.LTable) []string {
	out := make([]string, 0, tbl.MaxN())
	for i := 1; i <= tbl.MaxN(); i++ {
		out = append(out, tbl.RawGetInt(i).String())
	}
	return out
}
