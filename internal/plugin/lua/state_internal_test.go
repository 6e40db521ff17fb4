// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package lua

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	luavm "github.com/yuin/gopher-lua"
)

func TestNewState_LibraryOpenFailure(t *testing.T) {
	f := NewStateFactory()
	f.libraries = []library{{"broken", func(L *luavm.LState) int {
		L.RaiseError("no such library")
		return 0
	}}}

	_, err := f.NewState(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open library broken")
}

func TestStateFactory_Options(t *testing.T) {
	f := NewStateFactory(WithCallStackSize(32), WithRegistrySize(0))

	assert.Equal(t, 32, f.callStackSize)
	assert.Equal(t, DefaultRegistrySize, f.registrySize, "non-positive sizes keep the default")
	assert.Len(t, f.libraries, 4)
}
