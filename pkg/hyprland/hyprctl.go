// Package hyprland implements the window and layout sources on top of hyprctl
// for Hyprland sessions, where xdotool and xkblayout-state don't work.
package hyprland

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"codeberg.org/miketth/nskbd/pkg/command"
	"codeberg.org/miketth/nskbd/pkg/nskbd"
)

var (
	ErrNoActiveWindow  = errors.New("no active window")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrDeviceNotFound  = errors.New("device not found")
)

type mappedError struct {
	re  *regexp.Regexp
	err error
}

var errorMapper = []mappedError{
	{re: regexp.MustCompile(`^ok$`), err: nil},
	{re: regexp.MustCompile(`layout idx out of range.*`), err: ErrIndexOutOfRange},
	{re: regexp.MustCompile(`device not found`), err: ErrDeviceNotFound},
}

// LayoutRegistry resolves a pretty layout name such as "Russian" to its
// XKB layout and variant codes.
type LayoutRegistry interface {
	LayoutAndVariant(prettyName string) (string, string)
}

type Hyprctl struct {
	Path string
	// Keyboard selects the device to read and switch. Empty means the main keyboard.
	Keyboard string

	registry LayoutRegistry
	runner   command.Runner
}

var (
	_ nskbd.WindowSource = (*Hyprctl)(nil)
	_ nskbd.LayoutSource = (*Hyprctl)(nil)
)

// NewHyprctl returns a hyprctl wrapper. registry may be nil, in which case
// the active keymap name is matched as is.
func NewHyprctl(keyboard string, registry LayoutRegistry, timeout time.Duration) *Hyprctl {
	return &Hyprctl{
		Path:     "hyprctl",
		Keyboard: keyboard,
		registry: registry,
		runner:   command.NewRunner(timeout),
	}
}

func (h *Hyprctl) runCommand(ctx context.Context, args ...string) (string, error) {
	return h.runner.Output(ctx, h.Path, args...)
}

func (h *Hyprctl) ActiveWindowClass(ctx context.Context) (string, error) {
	outStr, err := h.runCommand(ctx, "activewindow", "-j")
	if err != nil {
		return "", err
	}

	var w window
	if err := json.Unmarshal([]byte(outStr), &w); err != nil {
		return "", fmt.Errorf("unmarshal: %w, (hyprctl: %s)", err, outStr)
	}

	class := w.Class
	if class == "" {
		class = w.InitialClass
	}
	if class == "" {
		return "", ErrNoActiveWindow
	}

	return strings.ToLower(class), nil
}

func (h *Hyprctl) keyboards(ctx context.Context) (devices, error) {
	outStr, err := h.runCommand(ctx, "devices", "-j")
	if err != nil {
		return devices{}, err
	}

	var devs devices
	if err := json.Unmarshal([]byte(outStr), &devs); err != nil {
		return devices{}, fmt.Errorf("unmarshal: %w, (hyprctl: %s)", err, outStr)
	}

	return devs, nil
}

func (h *Hyprctl) CurrentLayout(ctx context.Context) (nskbd.LayoutCode, error) {
	devs, err := h.keyboards(ctx)
	if err != nil {
		return 0, fmt.Errorf("get keyboards: %w", err)
	}

	kb, ok := devs.pick(h.Keyboard)
	if !ok {
		return 0, fmt.Errorf("keyboard %q: %w", h.Keyboard, ErrDeviceNotFound)
	}

	name := kb.ActiveKeymap
	if h.registry != nil {
		if code, _ := h.registry.LayoutAndVariant(name); code != "" {
			name = code
		}
	}

	return nskbd.LayoutCodeFromName(name), nil
}

func (h *Hyprctl) SetLayout(ctx context.Context, code nskbd.LayoutCode) error {
	device := h.Keyboard
	if device == "" {
		device = "current"
	}

	outStr, err := h.runCommand(ctx, "switchxkblayout", "--", device, strconv.Itoa(int(code)))
	if err != nil {
		return err
	}

	for _, m := range errorMapper {
		if m.re.MatchString(outStr) {
			return m.err
		}
	}

	return fmt.Errorf("unknown hyprctl error: %s", outStr)
}
