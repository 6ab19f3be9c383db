//go:build linux

package platform

import (
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/x11"
)

// X11 sizes the screen from the active monitor's work area.
type X11 struct {
	Display string
	Taskbar int
}

func (x X11) Name() string { return "x11" }

func (x X11) Screen() (geometry.Screen, error) {
	conn, err := x11.NewConnection(x.Display)
	if err != nil {
		return geometry.Screen{}, err
	}
	defer conn.Close()

	mon, err := conn.ActiveMonitor()
	if err != nil {
		return geometry.Screen{}, err
	}
	return geometry.Screen{
		Width:   mon.Bounds.Extent.Width,
		Height:  mon.Bounds.Extent.Height,
		Taskbar: x.Taskbar,
	}, nil
}
