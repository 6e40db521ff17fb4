// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package xdg provides XDG Base Directory paths for plughost.
package xdg

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

const appName = "plughost"

// ConfigDir returns the config directory: $XDG_CONFIG_HOME/plughost or
// ~/.config/plughost.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the data directory: $XDG_DATA_HOME/plughost or
// ~/.local/share/plughost. The storage document and the plugin root live here
// by default.
func DataDir() (string, error) {
	return dir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the state directory: $XDG_STATE_HOME/plughost or
// ~/.local/state/plughost.
func StateDir() (string, error) {
	return dir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func dir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home := os.Getenv("HOME")
		if home == "" {
			var err error
			home, err = os.UserHomeDir()
			if err != nil {
				return "", oops.In("xdg").With("env", env).Wrapf(err, "cannot resolve home directory")
			}
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, appName), nil
}

// EnsureDir creates path and its parents with 0700 permissions.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return oops.In("xdg").With("path", path).Wrapf(err, "failed to create directory")
	}
	return nil
}
