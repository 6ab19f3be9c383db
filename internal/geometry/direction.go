package geometry

import (
	"fmt"
	"strings"
)

// Direction names the edge or corner a resize is grabbed from.
type Direction int

const (
	DirNone Direction = iota
	DirN
	DirS
	DirE
	DirW
	DirNE
	DirNW
	DirSE
	DirSW
)

var directionNames = map[Direction]string{
	DirN:  "n",
	DirS:  "s",
	DirE:  "e",
	DirW:  "w",
	DirNE: "ne",
	DirNW: "nw",
	DirSE: "se",
	DirSW: "sw",
}

// Directions lists the eight resize directions.
var Directions = []Direction{DirN, DirS, DirE, DirW, DirNE, DirNW, DirSE, DirSW}

// String returns the compass abbreviation of the direction.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "none"
}

// ParseDirection parses a compass abbreviation such as "nw".
func ParseDirection(s string) (Direction, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return DirNone, fmt.Errorf("unknown resize direction %q", s)
}

func (d Direction) north() bool { return d == DirN || d == DirNE || d == DirNW }
func (d Direction) south() bool { return d == DirS || d == DirSE || d == DirSW }
func (d Direction) east() bool  { return d == DirE || d == DirNE || d == DirSE }
func (d Direction) west() bool  { return d == DirW || d == DirNW || d == DirSW }

// Resize applies a pointer delta to start as if the window were grabbed by
// the edge or corner d. Leading edges (n, w) move the position and shrink or
// grow the opposing dimension; trailing edges (s, e) only change the extent.
// The result never drops below min; when a leading edge hits the floor the
// opposite edge stays where it was.
func Resize(d Direction, start Rect, delta Point, min Extent) Rect {
	out := start
	switch {
	case d.west():
		out.Extent.Width = start.Extent.Width - delta.X
		if out.Extent.Width < min.Width {
			out.Extent.Width = min.Width
		}
		out.Position.X = start.Right() - out.Extent.Width
	case d.east():
		out.Extent.Width = start.Extent.Width + delta.X
	}
	switch {
	case d.north():
		out.Extent.Height = start.Extent.Height - delta.Y
		if out.Extent.Height < min.Height {
			out.Extent.Height = min.Height
		}
		out.Position.Y = start.Bottom() - out.Extent.Height
	case d.south():
		out.Extent.Height = start.Extent.Height + delta.Y
	}
	out.Extent = out.Extent.Clamp(min)
	return out
}
