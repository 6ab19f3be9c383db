package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Monitor is one active RandR output.
type Monitor struct {
	ID     int
	Name   string
	Bounds geometry.Rect
}

// Monitors lists the active outputs.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTCs report no size or no outputs.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Bounds: geometry.Rect{
				Position: geometry.Point{X: int(info.X), Y: int(info.Y)},
				Extent:   geometry.Extent{Width: int(info.Width), Height: int(info.Height)},
			},
		})
	}
	return monitors, nil
}

// ActiveMonitor returns the monitor holding the focused window, falling back
// to the one under the pointer and then the first. Its bounds are clipped to
// the EWMH work area when the window manager publishes one.
func (c *Connection) ActiveMonitor() (Monitor, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return Monitor{}, err
	}
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	mon, ok := Monitor{}, false
	if win, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && win != 0 {
		if p, found := c.windowCenter(win); found {
			mon, ok = monitorAt(monitors, p)
		}
	}
	if !ok {
		if ptr, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply(); err == nil {
			mon, ok = monitorAt(monitors, geometry.Point{X: int(ptr.RootX), Y: int(ptr.RootY)})
		}
	}
	if !ok {
		mon = monitors[0]
	}

	if area, found := c.workArea(); found {
		if clipped, overlap := intersect(mon.Bounds, area); overlap {
			mon.Bounds = clipped
		}
	}
	return mon, nil
}

func (c *Connection) windowCenter(win xproto.Window) (geometry.Point, bool) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geometry.Point{}, false
	}
	tr, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return geometry.Point{}, false
	}
	return geometry.Point{
		X: int(tr.DstX) + int(geom.Width)/2,
		Y: int(tr.DstY) + int(geom.Height)/2,
	}, true
}

func (c *Connection) workArea() (geometry.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return geometry.Rect{}, false
	}
	i := 0
	if cur, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(cur) < len(areas) {
		i = int(cur)
	}
	wa := areas[i]
	return geometry.Rect{
		Position: geometry.Point{X: int(wa.X), Y: int(wa.Y)},
		Extent:   geometry.Extent{Width: int(wa.Width), Height: int(wa.Height)},
	}, true
}

func monitorAt(monitors []Monitor, p geometry.Point) (Monitor, bool) {
	for _, m := range monitors {
		if m.Bounds.Contains(p) {
			return m, true
		}
	}
	return Monitor{}, false
}

func intersect(a, b geometry.Rect) (geometry.Rect, bool) {
	x1 := max(a.Position.X, b.Position.X)
	y1 := max(a.Position.Y, b.Position.Y)
	x2 := min(a.Right(), b.Right())
	y2 := min(a.Bottom(), b.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return geometry.Rect{}, false
	}
	return geometry.Rect{
		Position: geometry.Point{X: x1, Y: y1},
		Extent:   geometry.Extent{Width: x2 - x1, Height: y2 - y1},
	}, true
}
