package xkblayouts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryXML = `<?xml version="1.0" encoding="UTF-8"?>
<xkbConfigRegistry version="1.1">
  <layoutList>
    <layout>
      <configItem>
        <name>us</name>
        <description>English (US)</description>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>intl</name>
            <description>English (US, intl., with dead keys)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
    <layout>
      <configItem>
        <name>ru</name>
        <description>Russian</description>
      </configItem>
      <variantList>
        <variant>
          <configItem>
            <name>phonetic</name>
            <description>Russian (phonetic)</description>
          </configItem>
        </variant>
      </variantList>
    </layout>
  </layoutList>
</xkbConfigRegistry>`

func parseTestRegistry(t *testing.T) *Registry {
	t.Helper()

	registry, err := ParseRegistry(strings.NewReader(registryXML))
	require.NoError(t, err)
	return registry
}

func TestLayoutAndVariant(t *testing.T) {
	t.Parallel()

	registry := parseTestRegistry(t)

	testCases := []struct {
		pretty      string
		wantLayout  string
		wantVariant string
	}{
		{pretty: "Russian", wantLayout: "ru"},
		{pretty: "Russian (phonetic)", wantLayout: "ru", wantVariant: "phonetic"},
		{pretty: "English (US)", wantLayout: "us"},
		{pretty: "Klingon"},
	}

	for _, tc := range testCases {
		layout, variant := registry.LayoutAndVariant(tc.pretty)
		assert.Equal(t, tc.wantLayout, layout, tc.pretty)
		assert.Equal(t, tc.wantVariant, variant, tc.pretty)
	}
}

func TestParseRegistryFileMissing(t *testing.T) {
	t.Parallel()

	_, err := ParseRegistryFile("/nonexistent/evdev.xml")
	assert.Error(t, err)
}

func TestParseRegistryMalformed(t *testing.T) {
	t.Parallel()

	_, err := ParseRegistry(strings.NewReader("<xkbConfigRegistry><layoutList>"))
	assert.Error(t, err)
}
