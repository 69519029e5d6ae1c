package hotkey

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	evdev "github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var ErrNoKeyboards = errors.New("no readable keyboard devices")

// keyboard is the part of *evdev.InputDevice the listener needs.
type keyboard interface {
	ReadOne() (*evdev.InputEvent, error)
	Path() string
	Close() error
}

type Listener struct {
	combo Combo
	paths []string
	fire  func()
	log   *zap.SugaredLogger

	open func(path string) (keyboard, error)
}

// NewListener returns a listener calling fire whenever combo is pressed on
// any of the devices at paths.
func NewListener(combo Combo, paths []string, fire func(), log *zap.SugaredLogger) *Listener {
	return &Listener{
		combo: combo,
		paths: paths,
		fire:  fire,
		log:   log,
		open: func(path string) (keyboard, error) {
			return evdev.Open(path)
		},
	}
}

// Listen blocks until ctx is cancelled or every device failed.
func (l *Listener) Listen(ctx context.Context) error {
	var devices []keyboard
	for _, path := range l.paths {
		dev, err := l.open(path)
		if err != nil {
			l.log.Warnw("cannot open keyboard device", "path", path, "error", err)
			continue
		}
		devices = append(devices, dev)
	}
	if len(devices) == 0 {
		return ErrNoKeyboards
	}

	l.log.Infow("hotkey listener started", "hotkey", l.combo.String(), "devices", len(devices))

	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.readDevice(ctx, dev)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		// closing the devices unblocks the pending reads
		for _, dev := range devices {
			_ = dev.Close()
		}
		<-done
		return ctx.Err()
	case <-done:
		for _, dev := range devices {
			_ = dev.Close()
		}
		return fmt.Errorf("all keyboard devices failed: %w", ErrNoKeyboards)
	}
}

func (l *Listener) readDevice(ctx context.Context, dev keyboard) {
	matcher := NewMatcher(l.combo)

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() == nil {
				l.log.Errorw("keyboard read failed", "path", dev.Path(), "error", err)
			}
			return
		}

		if ev.Type != evdev.EV_KEY {
			continue
		}

		kev := evdev.NewKeyEvent(ev)
		if matcher.Feed(kev.Scancode, kev.State) {
			l.log.Infow("hotkey detected", "hotkey", l.combo.String(), "path", dev.Path())
			l.fire()
		}
	}
}

// FindKeyboards lists input devices that can type letters.
func FindKeyboards() ([]string, error) {
	inputs, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var paths []string
	for _, input := range inputs {
		dev, err := evdev.Open(input.Path)
		if err != nil {
			continue
		}

		keys := dev.CapableEvents(evdev.EV_KEY)
		if slices.Contains(keys, evdev.KEY_A) && slices.Contains(keys, evdev.KEY_Z) {
			paths = append(paths, input.Path)
		}
		_ = dev.Close()
	}

	return paths, nil
}
