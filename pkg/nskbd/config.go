package nskbd

import (
	"maps"
	"strings"
)

// LayoutCode is the index of a keyboard layout group. The default
// two-layout setup uses 0 and 1, but any non-negative value is stored as is.
type LayoutCode int

const HotkeyAddWindow = "add_window"

type Configuration struct {
	WindowLayoutMap map[string]LayoutCode `json:"window_layout_map"`
	Hotkeys         map[string]string     `json:"hotkeys,omitempty"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		WindowLayoutMap: make(map[string]LayoutCode),
	}
}

// Normalize lower-cases window keys and makes sure the map is non-nil.
func (c Configuration) Normalize() Configuration {
	out := Configuration{
		WindowLayoutMap: make(map[string]LayoutCode, len(c.WindowLayoutMap)),
		Hotkeys:         c.Hotkeys,
	}
	for window, code := range c.WindowLayoutMap {
		out.WindowLayoutMap[strings.ToLower(window)] = code
	}
	return out
}

func (c Configuration) Clone() Configuration {
	out := Configuration{
		WindowLayoutMap: maps.Clone(c.WindowLayoutMap),
		Hotkeys:         maps.Clone(c.Hotkeys),
	}
	if out.WindowLayoutMap == nil {
		out.WindowLayoutMap = make(map[string]LayoutCode)
	}
	return out
}

// Equal compares by content. A nil map equals an empty one.
func (c Configuration) Equal(other Configuration) bool {
	return maps.Equal(c.WindowLayoutMap, other.WindowLayoutMap) &&
		maps.Equal(c.Hotkeys, other.Hotkeys)
}

func (c Configuration) Lookup(window string) (LayoutCode, bool) {
	code, ok := c.WindowLayoutMap[strings.ToLower(window)]
	return code, ok
}

var layoutNames = map[string]LayoutCode{
	"ru":      1,
	"rus":     1,
	"russian": 1,
}

// LayoutCodeFromName maps a layout name as printed by the layout tools to a
// code. Unknown names are the primary layout.
func LayoutCodeFromName(name string) LayoutCode {
	code, ok := layoutNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0
	}
	return code
}
