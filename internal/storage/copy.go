// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage

import (
	"encoding/json"
	"reflect"
)

// DeepCopy returns a copy of v sharing no maps, slices or pointers with it.
// Concrete types are preserved, so a []string stays a []string.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case string, bool, float64, float32, int, int64, int32, uint, uint64, json.Number:
		return t
	case map[string]any:
		return copyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = DeepCopy(e)
		}
		return out
	}
	return copyValue(reflect.ValueOf(v)).Interface()
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = DeepCopy(v)
	}
	return out
}

func copyValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), copyValue(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(copyValue(v.Index(i)))
		}
		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(copyValue(v.Elem()))
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Elem().Type())
		out.Elem().Set(copyValue(v.Elem()))
		return out
	default:
		return v
	}
}
