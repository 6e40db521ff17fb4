// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package i18n maps typed message keys to localized strings.
package i18n

import "strings"

// Key identifies a translatable message.
type Key int

// Message keys.
const (
	KeyHome Key = iota
	KeyEmulators
	KeyLibrary
	KeySettings
	KeyReminders
	KeyDashboard
	KeyWelcome
	KeyNoPlugins
	KeyUnknownPlugin
	KeyNoEntries
	KeyLoading
	KeyAvailablePlugins
	keyCount
)

var keyNames = [...]string{
	KeyHome:             "home",
	KeyEmulators:        "emulators",
	KeyLibrary:          "library",
	KeySettings:         "settings",
	KeyReminders:        "reminders",
	KeyDashboard:        "dashboard",
	KeyWelcome:          "welcome",
	KeyNoPlugins:        "no_plugins",
	KeyUnknownPlugin:    "unknown_plugin",
	KeyNoEntries:        "no_entries",
	KeyLoading:          "loading",
	KeyAvailablePlugins: "available_plugins",
}

// String returns the key's stable identifier.
func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "unknown"
	}
	return keyNames[k]
}

// Locale is a language tag such as "en" or "de".
type Locale string

// Supported locales.
const (
	English Locale = "en"
	German  Locale = "de"
)

var tables = map[Locale]map[Key]string{
	English: {
		KeyHome:             "Home",
		KeyEmulators:        "Emulators",
		KeyLibrary:          "Library",
		KeySettings:         "Settings",
		KeyReminders:        "Reminders",
		KeyDashboard:        "Dashboard",
		KeyWelcome:          "Welcome",
		KeyNoPlugins:        "No plugins loaded",
		KeyUnknownPlugin:    "Unknown plugin",
		KeyNoEntries:        "Nothing here yet",
		KeyLoading:          "Loading...",
		KeyAvailablePlugins: "Available plugins",
	},
	German: {
		KeyHome:             "Start",
		KeyEmulators:        "Emulatoren",
		KeyLibrary:          "Bibliothek",
		KeySettings:         "Einstellungen",
		KeyReminders:        "Erinnerungen",
		KeyDashboard:        "Übersicht",
		KeyWelcome:          "Willkommen",
		KeyNoPlugins:        "Keine Plugins geladen",
		KeyUnknownPlugin:    "Unbekanntes Plugin",
		KeyNoEntries:        "Noch keine Einträge",
		KeyLoading:          "Lädt...",
		KeyAvailablePlugins: "Verfügbare Plugins",
	},
}

// Locales returns the supported locales.
func Locales() []Locale {
	return []Locale{English, German}
}

// Supported reports whether locale has a translation table.
func Supported(locale string) bool {
	_, ok := tables[normalize(locale)]
	return ok
}

// Translator resolves keys for one locale, falling back to English.
type Translator struct {
	locale Locale
}

// New returns a translator for locale. Unknown or empty locales use English.
func New(locale string) Translator {
	l := normalize(locale)
	if _, ok := tables[l]; !ok {
		l = English
	}
	return Translator{locale: l}
}

// Locale returns the effective locale.
func (t Translator) Locale() Locale {
	if t.locale == "" {
		return English
	}
	return t.locale
}

// T returns the localized string for k.
func (t Translator) T(k Key) string {
	if s, ok := tables[t.Locale()][k]; ok {
		return s
	}
	if s, ok := tables[English][k]; ok {
		return s
	}
	return k.String()
}

// normalize reduces "de_DE.UTF-8" or "de-AT" to "de".
func normalize(locale string) Locale {
	l := strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(l, "_-."); i >= 0 {
		l = l[:i]
	}
	return Locale(l)
}
