// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads plughost configuration from defaults, an optional YAML
// file, and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/plughost/internal/logging"
	"github.com/holomush/plughost/internal/xdg"
	"github.com/holomush/plughost/pkg/i18n"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// FileName is the config file looked up in the XDG config directory.
const FileName = "config.yaml"

// CodeInvalid tags configuration errors.
const CodeInvalid = "CONFIG_INVALID"

// Config is the complete host configuration.
type Config struct {
	Plugins PluginsConfig `koanf:"plugins"`
	Storage StorageConfig `koanf:"storage"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Locale  string        `koanf:"locale"`
}

// PluginsConfig selects the plugin root and the units to skip.
type PluginsConfig struct {
	Dir      string   `koanf:"dir"`
	Disabled []string `koanf:"disabled"`
}

// StorageConfig selects the storage backend.
type StorageConfig struct {
	Backend string `koanf:"backend"`
	Path    string `koanf:"path"`
	DSN     string `koanf:"dsn"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig controls the observability server. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// Defaults returns the built-in configuration, rooted in the XDG data
// directory when it can be resolved.
func Defaults() map[string]any {
	dataDir, err := xdg.DataDir()
	if err != nil {
		dataDir = "."
	}
	return map[string]any{
		"plugins.dir":      filepath.Join(dataDir, "plugins"),
		"plugins.disabled": []string{},
		"storage.backend":  BackendFile,
		"storage.path":     filepath.Join(dataDir, "storage.json"),
		"storage.dsn":      "",
		"log.format":       logging.FormatText,
		"log.level":        "info",
		"metrics.addr":     "",
		"locale":           string(i18n.English),
	}
}

// Load builds a Config. path names a YAML file; when empty the XDG config
// file is used if it exists. flags may be nil; only flags the user changed
// override file values. Flag names map to keys by replacing "-" with ".",
// so --storage-backend sets storage.backend.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "load defaults")
	}

	explicit := path != ""
	if !explicit {
		if dir, err := xdg.ConfigDir(); err == nil {
			path = filepath.Join(dir, FileName)
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, oops.Code(CodeInvalid).With("path", path).Wrapf(err, "load config file")
			}
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "."), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code(CodeInvalid).Wrapf(err, "load flags")
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" && k.String("storage.dsn") == "" {
		if err := k.Set("storage.dsn", v); err != nil {
			return nil, oops.Code(CodeInvalid).Wrapf(err, "apply DATABASE_URL")
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code(CodeInvalid).Wrapf(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	errb := oops.Code(CodeInvalid)
	if c.Plugins.Dir == "" {
		return errb.Errorf("plugins.dir is required")
	}
	for _, p := range c.Plugins.Disabled {
		if _, err := glob.Compile(p); err != nil {
			return errb.With("pattern", p).Wrapf(err, "plugins.disabled has an invalid pattern")
		}
	}
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Path == "" {
			return errb.Errorf("storage.path is required for the file backend")
		}
	case BackendPostgres:
		if c.Storage.DSN == "" {
			return errb.Hint("set storage.dsn or DATABASE_URL").Errorf("storage.dsn is required for the postgres backend")
		}
	case BackendMemory:
	default:
		return errb.With("backend", c.Storage.Backend).Errorf("storage.backend must be file, memory or postgres, got %q", c.Storage.Backend)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return errb.Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errb.With("level", c.Log.Level).Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Locale == "" {
		return errb.Errorf("locale is required")
	}
	return nil
}
