package i18n_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/holomush/plughost/pkg/i18n"
)

func TestTranslator_T(t *testing.T) {
	tests := []struct {
		locale string
		key    i18n.Key
		want   string
	}{
		{"en", i18n.KeySettings, "Settings"},
		{"de", i18n.KeySettings, "Einstellungen"},
		{"de_DE.UTF-8", i18n.KeyLibrary, "Bibliothek"},
		{"de-AT", i18n.KeyHome, "Start"},
		{"fr", i18n.KeyHome, "Home"},
		{"", i18n.KeyReminders, "Reminders"},
	}

	for _, tt := range tests {
		t.Run(tt.locale+"/"+tt.key.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, i18n.New(tt.locale).T(tt.key))
		})
	}
}

func TestTranslator_ZeroValueIsEnglish(t *testing.T) {
	var tr i18n.Translator
	assert.Equal(t, i18n.English, tr.Locale())
	assert.Equal(t, "Dashboard", tr.T(i18n.KeyDashboard))
}

func TestTranslator_EveryKeyTranslated(t *testing.T) {
	for _, locale := range i18n.Locales() {
		tr := i18n.New(string(locale))
		for k := i18n.KeyHome; k <= i18n.KeyAvailablePlugins; k++ {
			assert.NotEqual(t, k.String(), tr.T(k), "locale %s missing %s", locale, k)
		}
	}
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "welcome", i18n.KeyWelcome.String())
	assert.Equal(t, "unknown", i18n.Key(-1).String())
	assert.Equal(t, "unknown", i18n.Key(1000).String())
}

func TestSupported(t *testing.T) {
	assert.True(t, i18n.Supported("en"))
	assert.True(t, i18n.Supported("DE"))
	assert.False(t, i18n.Supported("xx"))
}
