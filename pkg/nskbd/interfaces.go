package nskbd

import "context"

// WindowSource reports the class of the currently focused window.
// Implementations return a lower-cased class.
type WindowSource interface {
	ActiveWindowClass(ctx context.Context) (string, error)
}

// LayoutSource reads and changes the active keyboard layout.
type LayoutSource interface {
	CurrentLayout(ctx context.Context) (LayoutCode, error)
	SetLayout(ctx context.Context, code LayoutCode) error
}

// ConfigSource hands out the cached configuration and persists changes.
// Current never fails; it falls back to the last good (or empty) configuration.
type ConfigSource interface {
	Current() Configuration
	Save(cfg Configuration) error
}
