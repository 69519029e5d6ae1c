// Package xkbstate reads and switches the X keyboard layout group through
// the xkblayout-state tool.
package xkbstate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"codeberg.org/miketth/nskbd/pkg/command"
	"codeberg.org/miketth/nskbd/pkg/nskbd"
)

const toolName = "xkblayout-state"

type Format string

const (
	// FormatSymbol reads the layout symbol ("us", "ru") and maps it by name.
	FormatSymbol Format = "symbol"
	// FormatIndex reads the numeric group index.
	FormatIndex Format = "index"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatSymbol, FormatIndex:
		return f, nil
	}
	return "", fmt.Errorf("unknown layout format %q", s)
}

type Controller struct {
	Path   string
	Format Format

	runner command.Runner
}

var _ nskbd.LayoutSource = (*Controller)(nil)

func NewController(path string, format Format, timeout time.Duration) *Controller {
	if path == "" {
		path = ResolvePath()
	}
	if format == "" {
		format = FormatSymbol
	}

	return &Controller{
		Path:   path,
		Format: format,
		runner: command.NewRunner(timeout),
	}
}

// ResolvePath prefers an xkblayout-state shipped next to our own binary and
// falls back to a $PATH lookup.
func ResolvePath() string {
	exe, err := os.Executable()
	if err != nil {
		return toolName
	}

	candidate := filepath.Join(filepath.Dir(exe), toolName)
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() || info.Mode().Perm()&0111 == 0 {
		return toolName
	}

	return candidate
}

func (c *Controller) CurrentLayout(ctx context.Context) (nskbd.LayoutCode, error) {
	if c.Format == FormatIndex {
		out, err := c.runner.Output(ctx, c.Path, "print", "%c")
		if err != nil {
			return 0, fmt.Errorf("get layout index: %w", err)
		}
		idx, err := strconv.Atoi(out)
		if err != nil || idx < 0 {
			return 0, fmt.Errorf("parse layout index %q: invalid index", out)
		}
		return nskbd.LayoutCode(idx), nil
	}

	out, err := c.runner.Output(ctx, c.Path, "print", "%s")
	if err != nil {
		return 0, fmt.Errorf("get layout symbol: %w", err)
	}

	return nskbd.LayoutCodeFromName(out), nil
}

func (c *Controller) SetLayout(ctx context.Context, code nskbd.LayoutCode) error {
	if _, err := c.runner.Output(ctx, c.Path, "set", strconv.Itoa(int(code))); err != nil {
		return fmt.Errorf("set layout %d: %w", code, err)
	}
	return nil
}
