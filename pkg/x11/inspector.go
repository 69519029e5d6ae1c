// Package x11 finds the class of the focused X11 window with xdotool and xprop.
package x11

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"codeberg.org/miketth/nskbd/pkg/command"
	"codeberg.org/miketth/nskbd/pkg/nskbd"
)

var (
	ErrNoActiveWindow = errors.New("no active window")
	ErrNoWMClass      = errors.New("WM_CLASS not set")
)

// WM_CLASS(STRING) = "<instance>", "<class>"
var wmClassRe = regexp.MustCompile(`WM_CLASS.*?"[^"]*",\s*"([^"]*)"`)

type Inspector struct {
	XdotoolPath string
	XpropPath   string

	runner command.Runner
}

var _ nskbd.WindowSource = (*Inspector)(nil)

func NewInspector(timeout time.Duration) *Inspector {
	return &Inspector{
		XdotoolPath: "xdotool",
		XpropPath:   "xprop",
		runner:      command.NewRunner(timeout),
	}
}

func (i *Inspector) ActiveWindowClass(ctx context.Context) (string, error) {
	windowID, err := i.runner.Output(ctx, i.XdotoolPath, "getactivewindow")
	if err != nil {
		return "", fmt.Errorf("get active window: %w", err)
	}
	if windowID == "" {
		return "", ErrNoActiveWindow
	}

	props, err := i.runner.Output(ctx, i.XpropPath, "-id", windowID, "WM_CLASS")
	if err != nil {
		return "", fmt.Errorf("get WM_CLASS of window %s: %w", windowID, err)
	}

	return ParseWMClass(props)
}

// ParseWMClass extracts the lower-cased class (the second string) from
// xprop's WM_CLASS output.
func ParseWMClass(props string) (string, error) {
	match := wmClassRe.FindStringSubmatch(props)
	if match == nil || match[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrNoWMClass, props)
	}

	return strings.ToLower(match[1]), nil
}
