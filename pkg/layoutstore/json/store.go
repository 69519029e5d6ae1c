package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"codeberg.org/miketth/nskbd/pkg/nskbd"
)

type LayoutStore struct {
	filename string
}

func NewLayoutStore(filename string) *LayoutStore {
	return &LayoutStore{filename: filename}
}

func (s *LayoutStore) Load() (nskbd.Configuration, error) {
	data, err := os.ReadFile(s.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nskbd.DefaultConfiguration(), nil
	}
	if err != nil {
		return nskbd.Configuration{}, fmt.Errorf("read file: %w", err)
	}

	var cfg nskbd.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nskbd.Configuration{}, fmt.Errorf("decode json %s: %w", s.filename, err)
	}
	if cfg.WindowLayoutMap == nil {
		cfg.WindowLayoutMap = make(map[string]nskbd.LayoutCode)
	}

	return cfg, nil
}

func (s *LayoutStore) Save(cfg nskbd.Configuration) error {
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.filename), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if err := os.WriteFile(s.filename, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}
