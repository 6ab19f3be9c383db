package geometry

import "fmt"

// Point is a screen-space coordinate with the origin at the top-left.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the offset from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Extent is a window size.
type Extent struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Clamp raises each dimension of e to the matching floor dimension.
func (e Extent) Clamp(floor Extent) Extent {
	if e.Width < floor.Width {
		e.Width = floor.Width
	}
	if e.Height < floor.Height {
		e.Height = floor.Height
	}
	return e
}

// Rect pairs a position with an extent.
type Rect struct {
	Position Point  `json:"position"`
	Extent   Extent `json:"extent"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() int {
	return r.Position.X + r.Extent.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Position.Y + r.Extent.Height
}

// Contains reports whether p lies inside r (right and bottom edges exclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Position.X && p.X < r.Right() &&
		p.Y >= r.Position.Y && p.Y < r.Bottom()
}

func (r Rect) String() string {
	return fmt.Sprintf("%s@%s", r.Extent, r.Position)
}

// Screen is the bound windows are laid out against. Taskbar is the height
// reserved at the bottom edge.
type Screen struct {
	Width   int `json:"width" yaml:"width"`
	Height  int `json:"height" yaml:"height"`
	Taskbar int `json:"taskbar" yaml:"taskbar"`
}

// Usable returns the screen extent minus the taskbar reservation.
func (s Screen) Usable() Extent {
	h := s.Height - s.Taskbar
	if h < 1 {
		h = 1
	}
	w := s.Width
	if w < 1 {
		w = 1
	}
	return Extent{Width: w, Height: h}
}

// Maximized returns the geometry of a window filling the usable screen.
func Maximized(s Screen) Rect {
	return Rect{Extent: s.Usable()}
}
