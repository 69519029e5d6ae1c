package xkblayouts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const DefaultRegistryPath = "/usr/share/X11/xkb/rules/evdev.xml"

func ParseRegistryFile(path string) (*Registry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	return ParseRegistry(file)
}

func ParseRegistry(r io.Reader) (*Registry, error) {
	registry := &Registry{}
	if err := xml.NewDecoder(r).Decode(registry); err != nil {
		return nil, fmt.Errorf("decode xml: %w", err)
	}

	return registry, nil
}

// LayoutAndVariant finds the layout and variant names for a human readable
// description. Both results are empty if nothing matches.
func (r *Registry) LayoutAndVariant(prettyName string) (string, string) {
	for _, l := range r.LayoutList.Layout {
		if l.ConfigItem.Description == prettyName {
			return l.ConfigItem.Name, ""
		}

		for _, v := range l.VariantList.Variant {
			if v.ConfigItem.Description == prettyName {
				return l.ConfigItem.Name, v.ConfigItem.Name
			}
		}
	}

	return "", ""
}
