package nskbd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const DefaultPollInterval = 300 * time.Millisecond

var (
	ErrWindowUnknown = errors.New("active window could not be detected")
	ErrLayoutUnknown = errors.New("current layout could not be detected")
)

// Entry is a single window to layout mapping.
type Entry struct {
	Window string
	Layout LayoutCode
}

type Switcher struct {
	lastWindow string
	interval   time.Duration
	addWindow  chan struct{}

	windows WindowSource
	layouts LayoutSource
	config  ConfigSource
	log     *zap.SugaredLogger
}

func NewSwitcher(
	windows WindowSource,
	layouts LayoutSource,
	config ConfigSource,
	log *zap.SugaredLogger,
	interval time.Duration,
) *Switcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	return &Switcher{
		interval:  interval,
		addWindow: make(chan struct{}, 1),
		windows:   windows,
		layouts:   layouts,
		config:    config,
		log:       log,
	}
}

// Run polls the focused window until ctx is cancelled. It is the only
// goroutine that touches the switcher state and the configuration.
func (s *Switcher) Run(ctx context.Context) error {
	s.log.Info("service started")

	for {
		s.Step(ctx)

		select {
		case <-ctx.Done():
			s.log.Info("service stopped")
			return ctx.Err()
		case <-s.addWindow:
			_, _ = s.AddCurrentWindow(ctx)
		case <-time.After(s.interval):
		}
	}
}

// RequestAddWindow asks a running loop to learn the current window on its
// next wakeup. Requests made while one is pending are dropped.
func (s *Switcher) RequestAddWindow() {
	select {
	case s.addWindow <- struct{}{}:
	default:
	}
}

// Step runs a single poll iteration. A layout is only looked at when the
// focused window differs from the one seen on the previous step.
func (s *Switcher) Step(ctx context.Context) {
	cfg := s.config.Current()

	window, err := s.windows.ActiveWindowClass(ctx)
	if err != nil {
		s.log.Errorw("window detection failed", "error", err)
		return
	}
	if window == "" || window == s.lastWindow {
		return
	}

	s.lastWindow = window
	s.log.Debugw("active window changed", "window", window)

	target, found := cfg.Lookup(window)
	if !found {
		return
	}
	s.log.Debugw("found layout mapping", "window", window, "layout", target)

	current, err := s.layouts.CurrentLayout(ctx)
	if err != nil {
		s.log.Errorw("layout detection failed", "error", err)
		return
	}
	if current == target {
		return
	}

	if err := s.layouts.SetLayout(ctx, target); err != nil {
		s.log.Errorw("failed to switch layout", "layout", target, "error", err)
		return
	}
	s.log.Infow("layout switched", "window", window, "from", current, "to", target)
}

// LastWindow returns the most recently observed window class.
func (s *Switcher) LastWindow() string {
	return s.lastWindow
}

// AddCurrentWindow maps the focused window to the active layout and persists
// the configuration right away.
func (s *Switcher) AddCurrentWindow(ctx context.Context) (Entry, error) {
	window, err := s.windows.ActiveWindowClass(ctx)
	if err != nil || window == "" {
		s.log.Errorw("failed to add window", "error", err)
		return Entry{}, joinCause(ErrWindowUnknown, err)
	}

	layout, err := s.layouts.CurrentLayout(ctx)
	if err != nil {
		s.log.Errorw("failed to add window", "window", window, "error", err)
		return Entry{}, joinCause(ErrLayoutUnknown, err)
	}

	cfg := s.config.Current().Clone()
	cfg.WindowLayoutMap[window] = layout

	if err := s.config.Save(cfg); err != nil {
		s.log.Errorw("failed to add window", "window", window, "layout", layout, "error", err)
		return Entry{}, fmt.Errorf("save config: %w", err)
	}

	s.log.Infow("added mapping", "window", window, "layout", layout)
	return Entry{Window: window, Layout: layout}, nil
}

func joinCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
