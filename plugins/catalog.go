// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package plugins holds the built-in plugins. Each subdirectory is both the
// plugin's Go package and a loadable unit whose plugin.yaml names the
// catalog factories it provides.
package plugins

import (
	"github.com/holomush/plughost/pkg/pluginsdk"
	"github.com/holomush/plughost/plugins/dashboard"
	"github.com/holomush/plughost/plugins/emulators"
	"github.com/holomush/plughost/plugins/home"
	"github.com/holomush/plughost/plugins/library"
	"github.com/holomush/plughost/plugins/reminders"
	"github.com/holomush/plughost/plugins/settings"
)

// Catalog returns a catalog with every built-in factory registered under
// the plugin's name.
func Catalog() *pluginsdk.Catalog {
	c := pluginsdk.NewCatalog()
	c.MustRegister(home.Name, home.New)
	c.MustRegister(emulators.Name, emulators.New)
	c.MustRegister(library.Name, library.New)
	c.MustRegister(settings.Name, settings.New)
	c.MustRegister(reminders.Name, reminders.New)
	c.MustRegister(dashboard.Name, dashboard.New)
	return c
}
