package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
)

type paint int

const (
	paintDesktop paint = iota
	paintIcon
	paintZone
	paintBorder
	paintBorderActive
	paintTitle
	paintTitleActive
	paintButton
	paintBody
	paintTaskbar
	paintEntry
	paintEntryActive
	paintEntryMinimized
)

var palette = map[paint]lipgloss.Style{
	paintDesktop:        lipgloss.NewStyle().Background(lipgloss.Color("23")),
	paintIcon:           lipgloss.NewStyle().Background(lipgloss.Color("23")).Foreground(lipgloss.Color("15")).Bold(true),
	paintZone:           lipgloss.NewStyle().Background(lipgloss.Color("31")).Foreground(lipgloss.Color("153")),
	paintBorder:         lipgloss.NewStyle().Background(lipgloss.Color("250")).Foreground(lipgloss.Color("240")),
	paintBorderActive:   lipgloss.NewStyle().Background(lipgloss.Color("250")).Foreground(lipgloss.Color("18")),
	paintTitle:          lipgloss.NewStyle().Background(lipgloss.Color("244")).Foreground(lipgloss.Color("252")),
	paintTitleActive:    lipgloss.NewStyle().Background(lipgloss.Color("18")).Foreground(lipgloss.Color("15")).Bold(true),
	paintButton:         lipgloss.NewStyle().Background(lipgloss.Color("250")).Foreground(lipgloss.Color("0")),
	paintBody:           lipgloss.NewStyle().Background(lipgloss.Color("255")).Foreground(lipgloss.Color("0")),
	paintTaskbar:        lipgloss.NewStyle().Background(lipgloss.Color("250")).Foreground(lipgloss.Color("0")),
	paintEntry:          lipgloss.NewStyle().Background(lipgloss.Color("252")).Foreground(lipgloss.Color("0")),
	paintEntryActive:    lipgloss.NewStyle().Background(lipgloss.Color("245")).Foreground(lipgloss.Color("15")).Bold(true),
	paintEntryMinimized: lipgloss.NewStyle().Background(lipgloss.Color("252")).Foreground(lipgloss.Color("242")).Italic(true),
}

type cell struct {
	r rune
	p paint
}

// canvas is a grid of styled runes.
type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{r: ' ', p: paintDesktop}
		}
		c.cells[y] = row
	}
	return c
}

func (c *canvas) set(x, y int, r rune, p paint) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.cells[y][x] = cell{r: r, p: p}
}

func (c *canvas) fill(r cellRect, ch rune, p paint) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			c.set(x, y, ch, p)
		}
	}
}

// text writes s from (x, y), clipping at limit columns. It returns the
// column after the last written rune.
func (c *canvas) text(x, y, limit int, s string, p paint) int {
	for _, r := range s {
		if x >= limit {
			break
		}
		c.set(x, y, r, p)
		x++
	}
	return x
}

// String renders the canvas, one styled run per paint change.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		cur := row[0].p
		for _, cl := range row {
			if cl.p != cur {
				b.WriteString(palette[cur].Render(run.String()))
				run.Reset()
				cur = cl.p
			}
			run.WriteRune(cl.r)
		}
		b.WriteString(palette[cur].Render(run.String()))
	}
	return b.String()
}

// render draws the desktop: icons, inactive windows, snap previews, the
// active window on top, then the taskbar.
func render(v view, contents *desktop.Registry) string {
	if v.cols <= 0 || v.rows <= 0 {
		return ""
	}
	c := newCanvas(v.cols, v.rows)

	for i, icon := range v.snap.Icons {
		r := v.iconRect(i)
		c.text(r.X, r.Y, v.cols, iconLabel(icon), paintIcon)
	}

	windows := v.visible()
	var active *desktop.WindowRecord
	for i := range windows {
		if windows[i].Active {
			active = &windows[i]
			continue
		}
		drawWindow(c, v, windows[i], contents)
	}
	for _, z := range v.snap.Zones {
		drawZone(c, v, z)
	}
	if active != nil {
		drawWindow(c, v, *active, contents)
	}

	drawTaskbar(c, v)
	return c.String()
}

func drawZone(c *canvas, v view, z geometry.SnapZone) {
	r := v.scale.toCells(z.Rect())
	c.fill(r, '░', paintZone)
	c.text(r.X+1, r.Y, r.X+r.W, z.Kind.String(), paintZone)
}

func drawWindow(c *canvas, v view, w desktop.WindowRecord, contents *desktop.Registry) {
	r := v.scale.toCells(w.Geometry())
	border, title := paintBorder, paintTitle
	if w.Active {
		border, title = paintBorderActive, paintTitleActive
	}

	c.fill(r, ' ', paintBody)
	for x := r.X; x < r.X+r.W; x++ {
		c.set(x, r.Y, '─', border)
		c.set(x, r.Y+r.H-1, '─', border)
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		c.set(r.X, y, '│', border)
		c.set(r.X+r.W-1, y, '│', border)
	}
	c.set(r.X, r.Y, '┌', border)
	c.set(r.X+r.W-1, r.Y, '┐', border)
	c.set(r.X, r.Y+r.H-1, '└', border)
	c.set(r.X+r.W-1, r.Y+r.H-1, '┘', border)

	if r.H < 3 {
		return
	}
	ty := r.Y + titleRow
	inner := cellRect{X: r.X + 1, Y: ty, W: r.W - 2, H: 1}
	c.fill(inner, ' ', title)
	limit := r.X + r.W - 1
	if r.W >= minChromeW {
		limit = r.X + r.W - 1 - 3*buttonWidth
		maxGlyph := "[□]"
		if w.Maximized() {
			maxGlyph = "[▫]"
		}
		x := limit
		x = c.text(x, ty, r.X+r.W-1, "[_]", paintButton)
		x = c.text(x, ty, r.X+r.W-1, maxGlyph, paintButton)
		c.text(x, ty, r.X+r.W-1, "[x]", paintButton)
	}
	c.text(r.X+2, ty, limit-1, w.Title, title)

	body := geometry.Extent{Width: r.W - 2, Height: r.H - 3}
	if body.Width <= 0 || body.Height <= 0 || contents == nil {
		return
	}
	for i, line := range contents.Render(w, body) {
		c.text(r.X+1, ty+1+i, r.X+r.W-1, line, paintBody)
	}
}

func drawTaskbar(c *canvas, v view) {
	y := v.taskbarRow()
	c.fill(cellRect{X: 0, Y: y, W: v.cols, H: 1}, ' ', paintTaskbar)
	for i, s := range v.taskbarSpans() {
		e := v.snap.Taskbar[i]
		p := paintEntry
		switch {
		case e.Active:
			p = paintEntryActive
		case e.State == desktop.StateMinimized:
			p = paintEntryMinimized
		}
		c.text(s.start, y, s.end, s.label, p)
	}
}
