package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/session"
)

// cellRect is a rectangle in terminal cells.
type cellRect struct {
	X, Y, W, H int
}

func (r cellRect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// scale maps screen coordinates to terminal cells.
type scale struct {
	cell geometry.Extent
}

func (s scale) toCells(r geometry.Rect) cellRect {
	w := r.Extent.Width / s.cell.Width
	h := r.Extent.Height / s.cell.Height
	return cellRect{
		X: floorDiv(r.Position.X, s.cell.Width),
		Y: floorDiv(r.Position.Y, s.cell.Height),
		W: max(w, 1),
		H: max(h, 1),
	}
}

// toScreen returns the screen point at the centre of cell (x, y).
func (s scale) toScreen(x, y int) geometry.Point {
	return geometry.Point{
		X: x*s.cell.Width + s.cell.Width/2,
		Y: y*s.cell.Height + s.cell.Height/2,
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Window chrome, in cells. Row 0 is the top border, row 1 the title bar.
const (
	buttonWidth = 3
	titleRow    = 1
	minChromeW  = 4*buttonWidth + 2
)

// hitKind classifies what a cell belongs to.
type hitKind int

const (
	hitDesktop hitKind = iota
	hitIcon
	hitTaskbar
	hitTitle
	hitEdge
	hitBody
	hitMinimize
	hitMaximize
	hitClose
)

// hit is the result of a hit test.
type hit struct {
	kind  hitKind
	id    desktop.ID
	dir   geometry.Direction
	index int // icon or taskbar entry
}

// view is the cell layout of a snapshot on a cols x rows terminal.
type view struct {
	cols, rows int
	scale      scale
	snap       session.Snapshot
}

func (v view) taskbarRow() int { return v.rows - 1 }

// visible returns the drawn windows, bottom first.
func (v view) visible() []desktop.WindowRecord {
	out := make([]desktop.WindowRecord, 0, len(v.snap.Windows))
	for _, w := range v.snap.Windows {
		if !w.Minimized {
			out = append(out, w)
		}
	}
	return out
}

// iconRect places launcher icon i in the left desktop column.
func (v view) iconRect(i int) cellRect {
	return cellRect{X: 1, Y: 1 + 2*i, W: lipgloss.Width(iconLabel(v.snap.Icons[i])), H: 1}
}

func iconLabel(icon desktop.Icon) string {
	return "[" + icon.Label + "]"
}

// taskbarSpan is the cell range of one taskbar entry.
type taskbarSpan struct {
	start, end int // end exclusive
	label      string
}

func (v view) taskbarSpans() []taskbarSpan {
	spans := make([]taskbarSpan, 0, len(v.snap.Taskbar))
	x := 1
	for _, e := range v.snap.Taskbar {
		label := " " + e.Label + " "
		w := lipgloss.Width(label)
		if x+w > v.cols {
			break
		}
		spans = append(spans, taskbarSpan{start: x, end: x + w, label: label})
		x += w + 1
	}
	return spans
}

// buttonAt reports which title bar button, if any, covers column offset dx
// of a window w cells wide.
func buttonAt(dx, w int) hitKind {
	if w < minChromeW {
		return hitTitle
	}
	closeAt := w - 1 - buttonWidth
	maxAt := closeAt - buttonWidth
	minAt := maxAt - buttonWidth
	switch {
	case dx >= closeAt && dx < closeAt+buttonWidth:
		return hitClose
	case dx >= maxAt && dx < maxAt+buttonWidth:
		return hitMaximize
	case dx >= minAt && dx < minAt+buttonWidth:
		return hitMinimize
	}
	return hitTitle
}

// edgeAt reports the resize direction for a border cell, or DirNone.
func edgeAt(dx, dy int, r cellRect) geometry.Direction {
	north, south := dy == 0, dy == r.H-1
	west, east := dx == 0, dx == r.W-1
	switch {
	case north && west:
		return geometry.DirNW
	case north && east:
		return geometry.DirNE
	case south && west:
		return geometry.DirSW
	case south && east:
		return geometry.DirSE
	case north:
		return geometry.DirN
	case south:
		return geometry.DirS
	case west:
		return geometry.DirW
	case east:
		return geometry.DirE
	}
	return geometry.DirNone
}

// hitTest resolves the cell (x, y). Windows are tested top first, then the
// taskbar and the desktop icons.
func (v view) hitTest(x, y int) hit {
	if y == v.taskbarRow() {
		for i, s := range v.taskbarSpans() {
			if x >= s.start && x < s.end {
				return hit{kind: hitTaskbar, index: i}
			}
		}
		return hit{kind: hitDesktop}
	}

	windows := v.visible()
	for i := len(windows) - 1; i >= 0; i-- {
		w := windows[i]
		r := v.scale.toCells(w.Geometry())
		if !r.contains(x, y) {
			continue
		}
		dx, dy := x-r.X, y-r.Y
		if dir := edgeAt(dx, dy, r); dir != geometry.DirNone {
			return hit{kind: hitEdge, id: w.ID, dir: dir}
		}
		if dy == titleRow {
			return hit{kind: buttonAt(dx, r.W), id: w.ID}
		}
		return hit{kind: hitBody, id: w.ID}
	}

	for i := range v.snap.Icons {
		if v.iconRect(i).contains(x, y) {
			return hit{kind: hitIcon, index: i}
		}
	}
	return hit{kind: hitDesktop}
}
