// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/plughost/internal/storage"
)

type entry struct {
	Title string
	Tags  []string
}

func TestDeepCopy(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		mutate func(v any)
	}{
		{
			name:   "nested generic map",
			in:     map[string]any{"a": map[string]any{"b": []any{1.0}}},
			mutate: func(v any) { v.(map[string]any)["a"].(map[string]any)["b"].([]any)[0] = 2.0 },
		},
		{
			name:   "typed slice",
			in:     []string{"x", "y"},
			mutate: func(v any) { v.([]string)[0] = "z" },
		},
		{
			name:   "typed map of slices",
			in:     map[string][]int{"k": {1}},
			mutate: func(v any) { v.(map[string][]int)["k"][0] = 9 },
		},
		{
			name:   "pointer to struct",
			in:     &entry{Title: "t", Tags: []string{"a"}},
			mutate: func(v any) { v.(*entry).Title = "changed" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cp := storage.DeepCopy(tt.in)
			assert.Equal(t, tt.in, cp)
			tt.mutate(cp)
			assert.NotEqual(t, tt.in, cp)
		})
	}
}

func TestDeepCopy_Scalars(t *testing.T) {
	assert.Nil(t, storage.DeepCopy(nil))
	assert.Equal(t, "s", storage.DeepCopy("s"))
	assert.Equal(t, 3, storage.DeepCopy(3))
	assert.Equal(t, true, storage.DeepCopy(true))
}
