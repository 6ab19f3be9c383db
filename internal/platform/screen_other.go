//go:build !linux

package platform

import (
	"errors"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// X11 is only available on Linux.
type X11 struct {
	Display string
	Taskbar int
}

func (x X11) Name() string { return "x11" }

func (x X11) Screen() (geometry.Screen, error) {
	return geometry.Screen{}, errors.New("x11 screen source is only supported on linux")
}
