package memory

import "codeberg.org/miketth/nskbd/pkg/nskbd"

type LayoutStore struct {
	cfg   nskbd.Configuration
	loads int
}

func NewLayoutStore() *LayoutStore {
	return &LayoutStore{
		cfg: nskbd.DefaultConfiguration(),
	}
}

func (s *LayoutStore) Load() (nskbd.Configuration, error) {
	s.loads++
	return s.cfg.Clone(), nil
}

func (s *LayoutStore) Save(cfg nskbd.Configuration) error {
	s.cfg = cfg.Clone()
	return nil
}

// Loads reports how many times the store has been read.
func (s *LayoutStore) Loads() int {
	return s.loads
}
