package engine

import (
	"testing"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/pointer"
)

type probe struct {
	commits  []geometry.Rect
	previews [][]geometry.SnapZone
}

func (p *probe) hooks() Hooks {
	return Hooks{
		OnCommit: func(_ desktop.ID, pos geometry.Point, ext geometry.Extent) {
			p.commits = append(p.commits, geometry.Rect{Position: pos, Extent: ext})
		},
		OnPreview: func(_ desktop.ID, zones []geometry.SnapZone) {
			p.previews = append(p.previews, zones)
		},
	}
}

func (p *probe) last() geometry.Rect {
	return p.commits[len(p.commits)-1]
}

var testOptions = Options{
	Screen:    geometry.Screen{Width: 1280, Height: 840, Taskbar: 40},
	Threshold: 20,
	Min:       geometry.Extent{Width: 200, Height: 150},
}

var startRect = geometry.Rect{
	Position: geometry.Point{X: 100, Y: 100},
	Extent:   geometry.Extent{Width: 300, Height: 200},
}

func newTestEngine(hub *pointer.Hub) (*Engine, *probe) {
	p := &probe{}
	return New(1, startRect, hub, testOptions, p.hooks()), p
}

func TestDrag_FollowsPointerWithOffset(t *testing.T) {
	hub := pointer.NewHub()
	e, p := newTestEngine(hub)

	if !e.Begin(geometry.Point{X: 150, Y: 110}, KindMove, geometry.DirNone) {
		t.Fatalf("begin refused")
	}
	if e.Mode().Phase() != PhaseDragging {
		t.Fatalf("phase = %s", e.Mode().Phase())
	}
	hub.Move(geometry.Point{X: 450, Y: 310})

	want := geometry.Rect{Position: geometry.Point{X: 400, Y: 300}, Extent: startRect.Extent}
	if got := p.last(); got != want {
		t.Fatalf("commit = %v, want %v", got, want)
	}

	hub.Up()
	if e.Active() {
		t.Fatalf("expected idle after pointer up")
	}
	if got := p.last(); got != want {
		t.Fatalf("release without snap changed geometry: %v", got)
	}
	if hub.Attached() != 0 {
		t.Fatalf("listener leaked after release")
	}
}

func TestResize_SoutheastAndNorthwest(t *testing.T) {
	hub := pointer.NewHub()
	e, p := newTestEngine(hub)
	e.Begin(geometry.Point{X: 400, Y: 300}, KindResize, geometry.DirSE)
	hub.Move(geometry.Point{X: 450, Y: 330})
	if got := p.last(); got.Extent != (geometry.Extent{Width: 350, Height: 230}) || got.Position != startRect.Position {
		t.Fatalf("se resize = %v", got)
	}
	hub.Up()

	e, p = newTestEngine(hub)
	e.Begin(geometry.Point{X: 100, Y: 100}, KindResize, geometry.DirNW)
	hub.Move(geometry.Point{X: 120, Y: 110})
	want := geometry.Rect{Position: geometry.Point{X: 120, Y: 110}, Extent: geometry.Extent{Width: 280, Height: 190}}
	if got := p.last(); got != want {
		t.Fatalf("nw resize = %v, want %v", got, want)
	}
}

func TestResize_UsesStartGeometryAcrossMoves(t *testing.T) {
	hub := pointer.NewHub()
	e, p := newTestEngine(hub)
	e.Begin(geometry.Point{X: 100, Y: 100}, KindResize, geometry.DirW)

	hub.Move(geometry.Point{X: 600, Y: 100})
	if got := p.last(); got.Extent.Width != 200 || got.Position.X != 200 {
		t.Fatalf("clamped resize = %v", got)
	}
	hub.Move(geometry.Point{X: 90, Y: 100})
	if got := p.last(); got.Extent.Width != 310 || got.Position.X != 90 {
		t.Fatalf("resize after clamp = %v", got)
	}
}

func TestBegin_RejectsSecondInteraction(t *testing.T) {
	hub := pointer.NewHub()
	e, _ := newTestEngine(hub)

	if !e.Begin(geometry.Point{X: 120, Y: 120}, KindMove, geometry.DirNone) {
		t.Fatalf("first begin refused")
	}
	if e.Begin(geometry.Point{X: 120, Y: 120}, KindResize, geometry.DirSE) {
		t.Fatalf("second begin accepted")
	}
	if _, ok := e.Mode().(Dragging); !ok {
		t.Fatalf("mode replaced by rejected begin: %T", e.Mode())
	}
	if hub.Attached() != 1 {
		t.Fatalf("attached = %d, want 1", hub.Attached())
	}

	hub.Up()
	if e.Begin(geometry.Point{}, KindResize, geometry.DirNone) {
		t.Fatalf("resize without direction accepted")
	}
	if hub.Attached() != 0 {
		t.Fatalf("rejected begin attached a listener")
	}
}

func TestEnd_SnapsTopLeftCornerFirst(t *testing.T) {
	hub := pointer.NewHub()
	e, p := newTestEngine(hub)

	e.Begin(geometry.Point{X: 110, Y: 110}, KindMove, geometry.DirNone)
	hub.Move(geometry.Point{X: 20, Y: 25})

	zones := p.previews[len(p.previews)-1]
	if len(zones) != 3 {
		t.Fatalf("expected left, top and top-left previews, got %d", len(zones))
	}

	hub.Up()
	want := geometry.Rect{Extent: geometry.Extent{Width: 640, Height: 400}}
	if got := p.last(); got != want {
		t.Fatalf("snapped = %v, want top-left quarter %v", got, want)
	}
	if e.Zones() != nil {
		t.Fatalf("previews not cleared")
	}
	if final := p.previews[len(p.previews)-1]; final != nil {
		t.Fatalf("expected clearing preview, got %v", final)
	}
}

func TestEnd_SnappedExtentRespectsFloor(t *testing.T) {
	hub := pointer.NewHub()
	p := &probe{}
	opts := testOptions
	opts.Screen = geometry.Screen{Width: 300, Height: 240, Taskbar: 40}
	e := New(1, startRect, hub, opts, p.hooks())

	e.Begin(geometry.Point{X: 100, Y: 100}, KindMove, geometry.DirNone)
	hub.Move(geometry.Point{X: 0, Y: 0})
	hub.Up()
	if got := p.last().Extent; got.Width < 200 || got.Height < 150 {
		t.Fatalf("snapped extent below floor: %v", got)
	}
}

func TestClose_MidDragReleasesListener(t *testing.T) {
	hub := pointer.NewHub()
	e, p := newTestEngine(hub)

	e.Begin(geometry.Point{X: 110, Y: 110}, KindMove, geometry.DirNone)
	hub.Move(geometry.Point{X: 5, Y: 5})
	commits := len(p.commits)

	e.Close()
	if hub.Attached() != 0 {
		t.Fatalf("listener leaked on close")
	}
	if e.Active() {
		t.Fatalf("engine still active after close")
	}
	hub.Move(geometry.Point{X: 300, Y: 300})
	hub.Up()
	if len(p.commits) != commits {
		t.Fatalf("closed engine committed geometry")
	}
	if e.Begin(geometry.Point{}, KindMove, geometry.DirNone) {
		t.Fatalf("closed engine accepted begin")
	}
	e.Close()
}

func TestSync(t *testing.T) {
	hub := pointer.NewHub()
	e, _ := newTestEngine(hub)
	full := geometry.Maximized(testOptions.Screen)

	if !e.Sync(full) || e.Geometry() != full {
		t.Fatalf("idle sync not applied")
	}
	e.Begin(geometry.Point{X: 10, Y: 10}, KindMove, geometry.DirNone)
	if e.Sync(startRect) {
		t.Fatalf("sync accepted during drag")
	}
}

func TestEnd_IdleIsNoop(t *testing.T) {
	e, p := newTestEngine(nil)
	e.End()
	e.PointerMove(geometry.Point{X: 1, Y: 1})
	if len(p.commits) != 0 {
		t.Fatalf("idle engine committed")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("resize"); err != nil || k != KindResize {
		t.Fatalf("resize = %v %v", k, err)
	}
	if k, err := ParseKind("drag"); err != nil || k != KindMove {
		t.Fatalf("drag = %v %v", k, err)
	}
	if _, err := ParseKind("spin"); err == nil {
		t.Fatalf("expected error")
	}
}
