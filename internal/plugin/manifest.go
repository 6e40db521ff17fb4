// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package plugin discovers plugin units on disk and loads them through the
// runtime their manifest names.
package plugin

import (
	"path/filepath"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/holomush/plughost/pkg/pluginsdk"
)

// ManifestFile is the entry-point file that marks a directory as a plugin unit.
const ManifestFile = "plugin.yaml"

// Type identifies the runtime that loads a unit.
type Type string

// Runtime types.
const (
	TypeBuiltin Type = "builtin"
	TypeLua     Type = "lua"
)

// Manifest represents a plugin.yaml file.
type Manifest struct {
	Name         string         `yaml:"name,omitempty" json:"name,omitempty" jsonschema:"pattern=^[a-z]([a-z0-9_-]*[a-z0-9])?$,maxLength=64"`
	Type         Type           `yaml:"type" json:"type" jsonschema:"enum=builtin,enum=lua"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Capabilities []string       `yaml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Builtin      *BuiltinConfig `yaml:"builtin,omitempty" json:"builtin,omitempty"`
	Lua          *LuaConfig     `yaml:"lua,omitempty" json:"lua,omitempty"`
}

// BuiltinConfig lists the catalog factories a builtin unit provides.
type BuiltinConfig struct {
	Factories []string `yaml:"factories" json:"factories" jsonschema:"minItems=1"`
}

// LuaConfig holds Lua-specific configuration.
type LuaConfig struct {
	Entry string `yaml:"entry" json:"entry" jsonschema:"minLength=1"`
}

// ParseManifest validates data against the manifest schema and decodes it.
func ParseManifest(data []byte) (*Manifest, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, oops.Code("MANIFEST_INVALID").Wrapf(err, "invalid YAML")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks constraints the schema cannot express.
func (m *Manifest) Validate() error {
	if m.Name != "" {
		if err := pluginsdk.ValidateName(m.Name); err != nil {
			return err
		}
	}

	switch m.Type {
	case TypeBuiltin:
		if m.Builtin == nil || len(m.Builtin.Factories) == 0 {
			return oops.Code("MANIFEST_INVALID").Errorf("builtin.factories is required when type is builtin")
		}
		for i, id := range m.Builtin.Factories {
			if id == "" {
				return oops.Code("MANIFEST_INVALID").Errorf("builtin.factories[%d] is empty", i)
			}
		}
	case TypeLua:
		if m.Lua == nil || m.Lua.Entry == "" {
			return oops.Code("MANIFEST_INVALID").Errorf("lua.entry is required when type is lua")
		}
		entry := filepath.Clean(m.Lua.Entry)
		if filepath.IsAbs(entry) || entry == ".." || strings.HasPrefix(entry, ".."+string(filepath.Separator)) {
			return oops.Code("MANIFEST_INVALID").With("entry", m.Lua.Entry).Errorf("lua.entry must stay inside the unit directory")
		}
	default:
		return oops.Code("MANIFEST_INVALID").Errorf("type must be 'builtin' or 'lua', got %q", m.Type)
	}
	return nil
}
