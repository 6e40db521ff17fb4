// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//nolint:gocritic // captLocal: L is the idiomatic name for lua.LState
package hostfunc

import (
	"reflect"
	"sort"
	"strconv"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"
)

// pushError pushes nil followed by an error string and returns 2.
func pushError(L *lua.LState, errMsg string) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(errMsg))
	return 2
}

// pushSuccess pushes value followed by nil and returns 2.
func pushSuccess(L *lua.LState, value lua.LValue) int {
	L.Push(value)
	L.Push(lua.LNil)
	return 2
}

// ToLua converts a JSON-shaped Go value into a Lua value. Maps become
// tables with string keys, slices become sequences and numbers become
// LNumber.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case float64:
		return lua.LNumber(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case map[string]any:
		tbl := L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			tbl.RawSetString(k, ToLua(L, val[k]))
		}
		return tbl
	case []any:
		tbl := L.CreateTable(len(val), 0)
		for _, item := range val {
			tbl.Append(ToLua(L, item))
		}
		return tbl
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		tbl := L.CreateTable(rv.Len(), 0)
		for i := 0; i < rv.Len(); i++ {
			tbl.Append(ToLua(L, rv.Index(i).Interface()))
		}
		return tbl
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		tbl := L.NewTable()
		iter := rv.MapRange()
		for iter.Next() {
			tbl.RawSetString(iter.Key().String(), ToLua(L, iter.Value().Interface()))
		}
		return tbl
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return lua.LNumber(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return lua.LNumber(rv.Uint())
	case reflect.Float32:
		return lua.LNumber(rv.Float())
	}
	return lua.LNil
}

// CodeCyclicValue marks a Lua table that contains itself.
const CodeCyclicValue = "LUA_CYCLIC_VALUE"

// ToGo converts a Lua value into its JSON-shaped Go form. A table whose keys
// are exactly 1..n becomes []any; any other non-empty table becomes
// map[string]any with keys stringified. An empty table becomes an empty map.
// Functions and userdata are dropped. A table that reaches itself is an
// error; the same table appearing twice without a cycle is not.
func ToGo(v lua.LValue) (any, error) {
	return toGo(v, make(map[*lua.LTable]struct{}), "")
}

func toGo(v lua.LValue, path map[*lua.LTable]struct{}, key string) (any, error) {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val), nil
	case lua.LString:
		return string(val), nil
	case lua.LNumber:
		return float64(val), nil
	case *lua.LTable:
		if _, seen := path[val]; seen {
			return nil, oops.Code(CodeCyclicValue).With("key", key).Errorf("table at %q contains itself", key)
		}
		path[val] = struct{}{}
		defer delete(path, val)
		return tableToGo(val, path, key)
	default:
		return nil, nil
	}
}

func tableToGo(tbl *lua.LTable, path map[*lua.LTable]struct{}, prefix string) (any, error) {
	n := tbl.MaxN()
	count := 0
	tbl.ForEach(func(lua.LValue, lua.LValue) { count++ })

	if n > 0 && n == count {
		out := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			item, err := toGo(tbl.RawGetInt(i), path, joinKey(prefix, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out = append(out, item)
		}
		return out, nil
	}

	out := make(map[string]any, count)
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil || v.Type() == lua.LTFunction || v.Type() == lua.LTUserData {
			return
		}
		var item any
		item, err = toGo(v, path, joinKey(prefix, k.String()))
		out[k.String()] = item
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
