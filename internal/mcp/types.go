package mcp

import (
	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
)

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Tag string `json:"tag" jsonschema:"Content tag of the window to open (computer, text, counter, image, file)"`
}

// WindowInput names the target window of focus_window, minimize_window,
// close_window and toggle_maximize.
type WindowInput struct {
	ID int64 `json:"id" jsonschema:"Window id as reported by list_windows"`
}

// WindowOutput is the resulting record of a window operation.
type WindowOutput struct {
	Window WindowInfo `json:"window"`
}

// WindowInfo describes one window.
type WindowInfo struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	ContentTag string `json:"content_tag"`
	ZOrder     int    `json:"z_order"`
	State      string `json:"state"`
	Active     bool   `json:"active"`
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
}

func windowInfo(r desktop.WindowRecord) WindowInfo {
	return WindowInfo{
		ID:         int64(r.ID),
		Title:      r.Title,
		ContentTag: r.ContentTag,
		ZOrder:     r.ZOrder,
		State:      string(r.State()),
		Active:     r.Active,
		X:          r.Position.X,
		Y:          r.Position.Y,
		Width:      r.Extent.Width,
		Height:     r.Extent.Height,
	}
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct{}

// ZoneInfo is a live snap preview.
type ZoneInfo struct {
	Kind   string `json:"kind"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func zoneInfo(z geometry.SnapZone) ZoneInfo {
	return ZoneInfo{
		Kind:   z.Kind.String(),
		X:      z.Anchor.X,
		Y:      z.Anchor.Y,
		Width:  z.Extent.Width,
		Height: z.Extent.Height,
	}
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowInfo `json:"windows"`
	Zones   []ZoneInfo   `json:"zones,omitempty"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	Closed bool `json:"closed"`
}

// DragWindowInput is the input for the drag_window tool.
type DragWindowInput struct {
	ID    int64 `json:"id" jsonschema:"Window id to drag by its title bar"`
	X     int   `json:"x" jsonschema:"Target x of the window's top-left corner"`
	Y     int   `json:"y" jsonschema:"Target y of the window's top-left corner"`
	Steps int   `json:"steps,omitempty" jsonschema:"Number of intermediate pointer moves, 1 to 1000 (default: 1)"`
}

// ResizeWindowInput is the input for the resize_window tool.
type ResizeWindowInput struct {
	ID        int64  `json:"id" jsonschema:"Window id to resize"`
	Direction string `json:"direction" jsonschema:"Border or corner to drag: n, s, e, w, ne, nw, se or sw"`
	DX        int    `json:"dx" jsonschema:"Horizontal pointer travel in pixels"`
	DY        int    `json:"dy" jsonschema:"Vertical pointer travel in pixels"`
}
