// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package pluginsdk

import (
	"encoding/json"
	"fmt"
)

// Namespace values come back from a JSON round trip, so numbers arrive as
// float64 and lists as []any. These accessors read them leniently.

// IntValue returns v as an int, or 0 if v is not numeric.
func IntValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, _ := n.Float64()
			return int(f)
		}
		return int(i)
	default:
		return 0
	}
}

// StringValue returns v as a string. nil becomes "".
func StringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// ListValue returns v as a list, or nil if it is not one.
func ListValue(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []map[string]any:
		out := make([]any, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	default:
		return nil
	}
}

// MapValue returns v as a map, or nil if it is not one.
func MapValue(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
