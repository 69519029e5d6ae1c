package hyprland

type window struct {
	Address      string `json:"address"`
	Class        string `json:"class"`
	InitialClass string `json:"initialClass"`
	Title        string `json:"title"`
}

type keyboard struct {
	Name         string `json:"name"`
	Layout       string `json:"layout"`
	Variant      string `json:"variant"`
	Options      string `json:"options"`
	ActiveKeymap string `json:"active_keymap"`
	Main         bool   `json:"main"`
}

type devices struct {
	Keyboards []keyboard `json:"keyboards"`
}

// pick returns the keyboard called name, or the main keyboard when name is
// empty. The first keyboard stands in for main on older Hyprland releases.
func (d devices) pick(name string) (keyboard, bool) {
	if len(d.Keyboards) == 0 {
		return keyboard{}, false
	}

	for _, k := range d.Keyboards {
		if name != "" && k.Name == name {
			return k, true
		}
		if name == "" && k.Main {
			return k, true
		}
	}
	if name != "" {
		return keyboard{}, false
	}

	return d.Keyboards[0], true
}
