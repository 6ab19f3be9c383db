// Package desktop owns the window records of a session and the operations
// that mutate them.
package desktop

import "github.com/1broseidon/snapdesk/internal/geometry"

// ID identifies a window for the lifetime of the session.
type ID int64

// WindowRecord is the stored state of one window.
type WindowRecord struct {
	ID         ID              `json:"id"`
	Title      string          `json:"title"`
	ContentTag string          `json:"content_tag"`
	ZOrder     int             `json:"z_order"`
	Minimized  bool            `json:"minimized"`
	Active     bool            `json:"active"`
	Position   geometry.Point  `json:"position"`
	Extent     geometry.Extent `json:"extent"`
	// Restore holds the geometry from before a maximize; nil when the window
	// is not maximized.
	Restore *geometry.Rect `json:"restore,omitempty"`
}

// Geometry returns the record's position and extent.
func (r WindowRecord) Geometry() geometry.Rect {
	return geometry.Rect{Position: r.Position, Extent: r.Extent}
}

// Maximized reports whether the window is currently maximized.
func (r WindowRecord) Maximized() bool {
	return r.Restore != nil
}

// State is the display state of a window.
type State string

const (
	StateNormal    State = "normal"
	StateMinimized State = "minimized"
	StateMaximized State = "maximized"
)

// State returns the record's display state. Minimized wins over maximized.
func (r WindowRecord) State() State {
	switch {
	case r.Minimized:
		return StateMinimized
	case r.Maximized():
		return StateMaximized
	default:
		return StateNormal
	}
}

func (r WindowRecord) clone() WindowRecord {
	if r.Restore != nil {
		restore := *r.Restore
		r.Restore = &restore
	}
	return r
}
