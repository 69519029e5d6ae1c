// Package hotkey watches keyboards through evdev and reports when a
// configured key combination is pressed.
package hotkey

import (
	"errors"
	"fmt"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

var (
	ErrEmptyCombo = errors.New("empty hotkey")
	ErrNoKey      = errors.New("hotkey has no key")
)

var modifierNames = map[string]Modifier{
	"shift": ModShift,
	"ctrl":  ModCtrl,
	"alt":   ModAlt,
	"meta":  ModMeta,
	"super": ModMeta,
	"win":   ModMeta,
}

var modifierKeys = map[evdev.EvCode]Modifier{
	evdev.KEY_LEFTSHIFT:  ModShift,
	evdev.KEY_RIGHTSHIFT: ModShift,
	evdev.KEY_LEFTCTRL:   ModCtrl,
	evdev.KEY_RIGHTCTRL:  ModCtrl,
	evdev.KEY_LEFTALT:    ModAlt,
	evdev.KEY_RIGHTALT:   ModAlt,
	evdev.KEY_LEFTMETA:   ModMeta,
	evdev.KEY_RIGHTMETA:  ModMeta,
}

// names that differ from the kernel's KEY_* constant
var keyAliases = map[string]string{
	"escape": "ESC",
	"return": "ENTER",
}

// Combo is a set of modifiers plus one non-modifier key.
type Combo struct {
	Mods Modifier
	Key  evdev.EvCode
}

// ParseCombo parses whitespace separated tokens like "ctrl shift q".
// Token case does not matter.
func ParseCombo(s string) (Combo, error) {
	tokens := strings.Fields(strings.ToLower(s))
	if len(tokens) == 0 {
		return Combo{}, ErrEmptyCombo
	}

	var combo Combo
	hasKey := false
	for _, tok := range tokens {
		if mod, ok := modifierNames[tok]; ok {
			combo.Mods |= mod
			continue
		}

		if hasKey {
			return Combo{}, fmt.Errorf("hotkey %q: more than one key", s)
		}

		code, err := keyCode(tok)
		if err != nil {
			return Combo{}, fmt.Errorf("hotkey %q: %w", s, err)
		}
		combo.Key = code
		hasKey = true
	}

	if !hasKey {
		return Combo{}, fmt.Errorf("hotkey %q: %w", s, ErrNoKey)
	}

	return combo, nil
}

func keyCode(tok string) (evdev.EvCode, error) {
	name, ok := keyAliases[tok]
	if !ok {
		name = strings.ToUpper(tok)
	}

	code, ok := evdev.KEYFromString["KEY_"+name]
	if !ok {
		return 0, fmt.Errorf("unknown key %q", tok)
	}
	if _, isMod := modifierKeys[code]; isMod {
		return 0, fmt.Errorf("modifier %q used as key", tok)
	}

	return code, nil
}

func (c Combo) String() string {
	var parts []string
	for _, m := range []struct {
		mod  Modifier
		name string
	}{{ModCtrl, "ctrl"}, {ModShift, "shift"}, {ModAlt, "alt"}, {ModMeta, "meta"}} {
		if c.Mods&m.mod != 0 {
			parts = append(parts, m.name)
		}
	}

	key := strings.TrimPrefix(evdev.CodeName(evdev.EV_KEY, c.Key), "KEY_")
	parts = append(parts, strings.ToLower(key))

	return strings.Join(parts, " ")
}
