package nskbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayoutCodeFromName(t *testing.T) {
	t.Parallel()

	testCases := map[string]LayoutCode{
		"ru":        1,
		"RUS":       1,
		"Russian":   1,
		" ru\n":     1,
		"us":        0,
		"en":        0,
		"":          0,
		"ukrainian": 0,
	}

	for name, want := range testCases {
		assert.Equal(t, want, LayoutCodeFromName(name), "name %q", name)
	}
}

func TestConfigurationNormalizeLowercasesKeys(t *testing.T) {
	t.Parallel()

	cfg := Configuration{WindowLayoutMap: map[string]LayoutCode{"TelegramDesktop": 1, "firefox": 0}}

	got := cfg.Normalize()

	assert.Equal(t, map[string]LayoutCode{"telegramdesktop": 1, "firefox": 0}, got.WindowLayoutMap)
	code, ok := got.Lookup("TELEGRAMDESKTOP")
	assert.True(t, ok)
	assert.Equal(t, LayoutCode(1), code)
}

func TestConfigurationEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, DefaultConfiguration().Equal(Configuration{}))
	assert.False(t, DefaultConfiguration().Equal(Configuration{WindowLayoutMap: map[string]LayoutCode{"a": 0}}))
	assert.False(t, DefaultConfiguration().Equal(Configuration{Hotkeys: map[string]string{HotkeyAddWindow: "ctrl q"}}))
}

func TestConfigurationCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := Configuration{WindowLayoutMap: map[string]LayoutCode{"a": 0}}
	clone := orig.Clone()
	clone.WindowLayoutMap["b"] = 1

	assert.Len(t, orig.WindowLayoutMap, 1)
	assert.NotNil(t, Configuration{}.Clone().WindowLayoutMap)
}
