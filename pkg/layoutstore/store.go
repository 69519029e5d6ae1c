// Package layoutstore caches the window to layout configuration and keeps it
// in sync with its persistent backend.
package layoutstore

import (
	"fmt"
	"time"

	"codeberg.org/miketth/nskbd/pkg/nskbd"
	"go.uber.org/zap"
)

const DefaultReloadInterval = 5 * time.Second

// Backend persists a configuration. Load on a backend with nothing stored
// yet returns the default configuration and no error.
type Backend interface {
	Load() (nskbd.Configuration, error)
	Save(cfg nskbd.Configuration) error
}

type Store struct {
	cfg       nskbd.Configuration
	lastCheck time.Time
	interval  time.Duration
	now       func() time.Time

	backend Backend
	log     *zap.SugaredLogger
}

var _ nskbd.ConfigSource = (*Store)(nil)

func NewStore(backend Backend, log *zap.SugaredLogger, interval time.Duration) *Store {
	if interval <= 0 {
		interval = DefaultReloadInterval
	}

	s := &Store{
		interval: interval,
		now:      time.Now,
		backend:  backend,
		log:      log,
	}
	s.cfg = s.Load()
	s.lastCheck = s.now()

	return s
}

// Load reads the configuration from the backend. Failures are logged and
// yield the default configuration.
func (s *Store) Load() nskbd.Configuration {
	cfg, err := s.load()
	if err != nil {
		s.log.Errorw("config error", "error", err)
		return nskbd.DefaultConfiguration()
	}
	return cfg
}

func (s *Store) load() (nskbd.Configuration, error) {
	cfg, err := s.backend.Load()
	if err != nil {
		return nskbd.Configuration{}, err
	}
	return cfg.Normalize(), nil
}

// Current returns the cached configuration, re-reading the backend at most
// once per reload interval. The cache is only replaced when the stored
// content differs; a failed re-read keeps the previous configuration.
func (s *Store) Current() nskbd.Configuration {
	now := s.now()
	if now.Sub(s.lastCheck) <= s.interval {
		return s.cfg
	}
	s.lastCheck = now

	fresh, err := s.load()
	if err != nil {
		s.log.Errorw("config error, keeping previous config", "error", err)
		return s.cfg
	}

	if !fresh.Equal(s.cfg) {
		s.log.Infow("config reloaded from disk", "windows", len(fresh.WindowLayoutMap))
		s.cfg = fresh
	}

	return s.cfg
}

// Save persists cfg and then re-reads it from the backend. When the write
// fails the cached configuration stays as it was.
func (s *Store) Save(cfg nskbd.Configuration) error {
	if err := s.backend.Save(cfg.Normalize()); err != nil {
		s.log.Errorw("failed to save config", "error", err)
		return fmt.Errorf("save config: %w", err)
	}

	s.cfg = s.Load()
	return nil
}
