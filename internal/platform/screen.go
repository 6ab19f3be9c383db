// Package platform resolves the screen bound a desktop session lays windows
// out against.
package platform

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/geometry"
)

// ScreenSource produces the session screen.
type ScreenSource interface {
	Name() string
	Screen() (geometry.Screen, error)
}

// Static is a fixed screen.
type Static struct {
	Bound geometry.Screen
}

func (s Static) Name() string { return config.ScreenStatic }

func (s Static) Screen() (geometry.Screen, error) { return s.Bound, nil }

// Terminal sizes the screen from a terminal, one cell per Cell pixels.
type Terminal struct {
	Fd      int
	Cell    geometry.Extent
	Taskbar int
}

func (t Terminal) Name() string { return config.ScreenTerminal }

func (t Terminal) Screen() (geometry.Screen, error) {
	if !term.IsTerminal(t.Fd) {
		return geometry.Screen{}, fmt.Errorf("fd %d is not a terminal", t.Fd)
	}
	cols, rows, err := term.GetSize(t.Fd)
	if err != nil {
		return geometry.Screen{}, fmt.Errorf("read terminal size: %w", err)
	}
	return CellScreen(cols, rows, t.Cell, t.Taskbar), nil
}

// CellScreen converts a terminal of cols x rows cells into a screen.
func CellScreen(cols, rows int, cell geometry.Extent, taskbar int) geometry.Screen {
	return geometry.Screen{
		Width:   cols * cell.Width,
		Height:  rows * cell.Height,
		Taskbar: taskbar,
	}
}

// FromConfig returns the source selected by cfg.ScreenSource.
func FromConfig(cfg *config.Config) (ScreenSource, error) {
	switch cfg.ScreenSource {
	case config.ScreenStatic, "":
		return Static{Bound: cfg.ScreenBound()}, nil
	case config.ScreenX11:
		return X11{Display: cfg.Display, Taskbar: cfg.TaskbarHeight}, nil
	case config.ScreenTerminal:
		return Terminal{
			Fd:      int(os.Stdout.Fd()),
			Cell:    geometry.Extent{Width: cfg.TUI.CellWidth, Height: cfg.TUI.CellHeight},
			Taskbar: cfg.TUI.CellHeight, // one cell row
		}, nil
	default:
		return nil, fmt.Errorf("unknown screen source %q", cfg.ScreenSource)
	}
}

// Resolve reads the screen from src, falling back to fallback when the
// source is unavailable.
func Resolve(src ScreenSource, fallback geometry.Screen) (geometry.Screen, error) {
	s, err := src.Screen()
	if err != nil {
		return fallback, fmt.Errorf("%s screen source: %w", src.Name(), err)
	}
	if s.Width <= 0 || s.Height <= s.Taskbar {
		return fallback, fmt.Errorf("%s screen source reported unusable screen %dx%d", src.Name(), s.Width, s.Height)
	}
	return s, nil
}
