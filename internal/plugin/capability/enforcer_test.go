// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/plughost/internal/plugin/capability"
	"github.com/holomush/plughost/pkg/errutil"
)

func TestEnforcer_Check(t *testing.T) {
	e := capability.NewEnforcer()
	require.NoError(t, e.SetGrants("dashboard", []string{"storage.read.*"}))
	require.NoError(t, e.SetGrants("notes", []string{"storage.read.library"}))

	tests := []struct {
		unit string
		cap  string
		want bool
	}{
		{"dashboard", "storage.read.library", true},
		{"dashboard", "storage.read.reminders", true},
		{"dashboard", "storage.read.a.b", false},
		{"notes", "storage.read.library", true},
		{"notes", "storage.read.settings", false},
		{"unknown", "storage.read.library", false},
		{"dashboard", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.unit+"/"+tt.cap, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Check(tt.unit, tt.cap))
		})
	}
}

func TestEnforcer_SuperWildcard(t *testing.T) {
	var e capability.Enforcer
	require.NoError(t, e.SetGrants("admin", []string{"**"}))

	assert.True(t, e.CanRead("admin", "anything"))
	assert.True(t, e.Check("admin", "storage.read.deep.name"))
}

func TestEnforcer_SetGrantsIsAtomic(t *testing.T) {
	e := capability.NewEnforcer()
	require.NoError(t, e.SetGrants("notes", []string{"storage.read.library"}))

	for _, patterns := range [][]string{
		{"storage.read.home", "storage.[unclosed"},
		{""},
		{"network.dial"},
	} {
		err := e.SetGrants("notes", patterns)
		errutil.AssertErrorCode(t, err, capability.CodeInvalid)
	}
	assert.Error(t, e.SetGrants("", []string{"storage.read.x"}))

	assert.Equal(t, []string{"storage.read.library"}, e.Grants("notes"))
}

func TestEnforcer_RemoveAndList(t *testing.T) {
	e := capability.NewEnforcer()
	require.NoError(t, e.SetGrants("b", nil))
	require.NoError(t, e.SetGrants("a", []string{"storage.read.x"}))

	assert.Equal(t, []string{"a", "b"}, e.Units())
	assert.Empty(t, e.Grants("b"))
	assert.NotNil(t, e.Grants("b"))

	e.RemoveGrants("a")
	e.RemoveGrants("missing")
	assert.Equal(t, []string{"b"}, e.Units())
	assert.Nil(t, e.Grants("a"))
	assert.False(t, e.CanRead("a", "x"))
}
