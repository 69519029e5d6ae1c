package json

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/miketth/nskbd/pkg/nskbd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutStoreMissingFile(t *testing.T) {
	t.Parallel()

	store := NewLayoutStore(filepath.Join(t.TempDir(), "config.json"))

	cfg, err := store.Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg.WindowLayoutMap)
	assert.Empty(t, cfg.WindowLayoutMap)
}

func TestLayoutStoreMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := NewLayoutStore(path).Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode json")
}

func TestLayoutStoreTrailingGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"window_layout_map": {"firefox": 1}} garbage`), 0644))

	_, err := NewLayoutStore(path).Load()
	assert.ErrorContains(t, err, "decode json")
}

func TestLayoutStoreWritesPrettyJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	store := NewLayoutStore(path)

	err := store.Save(nskbd.Configuration{
		WindowLayoutMap: map[string]nskbd.LayoutCode{"telegramdesktop": 1},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"window_layout_map\": {\n        \"telegramdesktop\": 1\n    }\n}\n", string(data))
}

func TestLayoutStoreReadsOriginalFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"window_layout_map": {"firefox": 0, "telegramdesktop": 1}, "hotkeys": {"add_window": "ctrl shift q"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLayoutStore(path).Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]nskbd.LayoutCode{"firefox": 0, "telegramdesktop": 1}, cfg.WindowLayoutMap)
	assert.Equal(t, "ctrl shift q", cfg.Hotkeys[nskbd.HotkeyAddWindow])
}
