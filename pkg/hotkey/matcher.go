package hotkey

import (
	"time"

	evdev "github.com/holoplot/go-evdev"
)

const DefaultCooldown = time.Second

// Matcher tracks the modifier state of one keyboard and fires when the combo
// key goes down with exactly the combo's modifiers held.
type Matcher struct {
	combo    Combo
	mods     Modifier
	held     map[evdev.EvCode]Modifier
	cooldown time.Duration
	lastFire time.Time
	now      func() time.Time
}

func NewMatcher(combo Combo) *Matcher {
	return &Matcher{
		combo:    combo,
		held:     make(map[evdev.EvCode]Modifier),
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
}

// Feed consumes one key event and reports whether the combo fired.
func (m *Matcher) Feed(code evdev.EvCode, state evdev.KeyEventState) bool {
	if mod, ok := modifierKeys[code]; ok {
		if state == evdev.KeyUp {
			delete(m.held, code)
		} else {
			m.held[code] = mod
		}
		m.mods = 0
		for _, held := range m.held {
			m.mods |= held
		}
		return false
	}

	if state != evdev.KeyDown || code != m.combo.Key || m.mods != m.combo.Mods {
		return false
	}

	now := m.now()
	if !m.lastFire.IsZero() && now.Sub(m.lastFire) < m.cooldown {
		return false
	}
	m.lastFire = now

	return true
}
