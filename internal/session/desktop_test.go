package session

import (
	"errors"
	"testing"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/engine"
	"github.com/1broseidon/snapdesk/internal/geometry"
)

func newTestDesktop(t *testing.T) *Desktop {
	t.Helper()
	d, err := NewDesktop(DefaultSettings(), nil, nil)
	if err != nil {
		t.Fatalf("NewDesktop: %v", err)
	}
	return d
}

func TestOpen_CreatesWindowAndEngine(t *testing.T) {
	d := newTestDesktop(t)

	rec, err := d.Open("text")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if rec.Title != "Window 1" || !rec.Active {
		t.Fatalf("record = %+v", rec)
	}
	if _, ok := d.engines[rec.ID]; !ok {
		t.Fatalf("no engine for window %d", rec.ID)
	}
	if d.ID() == "" {
		t.Fatalf("empty session id")
	}
}

func TestDrag_SnapsToTopLeft(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("text")

	if !d.PointerDown(rec.ID, geometry.Point{X: 150, Y: 110}, engine.KindMove, geometry.DirNone) {
		t.Fatalf("pointer down refused")
	}
	d.PointerMove(geometry.Point{X: 60, Y: 15})

	snap := d.Snapshot()
	if len(snap.Zones) != 3 {
		t.Fatalf("preview zones = %v, want left, top and top-left", snap.Zones)
	}
	if got := snap.Windows[0].Position; got != (geometry.Point{X: 10, Y: 5}) {
		t.Fatalf("position during drag = %s", got)
	}

	d.PointerUp()

	got, _ := d.Window(rec.ID)
	want := geometry.Rect{Extent: geometry.Extent{Width: 640, Height: 380}}
	if got.Geometry() != want {
		t.Fatalf("geometry after release = %s, want %s", got.Geometry(), want)
	}
	snap = d.Snapshot()
	if len(snap.Zones) != 0 || snap.Pointer != 0 {
		t.Fatalf("zones=%v listeners=%d after release", snap.Zones, snap.Pointer)
	}
}

func TestPointerDown_FocusesWindow(t *testing.T) {
	d := newTestDesktop(t)
	first, _ := d.Open("text")
	second, _ := d.Open("counter")

	d.PointerDown(first.ID, geometry.Point{X: 120, Y: 105}, engine.KindMove, geometry.DirNone)
	d.PointerUp()

	a, _ := d.Window(first.ID)
	b, _ := d.Window(second.ID)
	if !a.Active || b.Active || a.ZOrder <= b.ZOrder {
		t.Fatalf("first=%+v second=%+v", a, b)
	}
}

func TestClose_MidDragReleasesListeners(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("text")

	d.PointerDown(rec.ID, geometry.Point{X: 150, Y: 110}, engine.KindMove, geometry.DirNone)
	d.PointerMove(geometry.Point{X: 40, Y: 30})
	if d.Hub().Attached() != 1 {
		t.Fatalf("listeners = %d, want 1", d.Hub().Attached())
	}

	d.Manager().CloseWindow(rec.ID)

	if d.Hub().Attached() != 0 {
		t.Fatalf("listeners leaked after close: %d", d.Hub().Attached())
	}
	if _, ok := d.engines[rec.ID]; ok {
		t.Fatalf("engine kept after close")
	}
	if z := d.Snapshot().Zones; len(z) != 0 {
		t.Fatalf("zones left after close: %v", z)
	}
	// Late pointer events must not resurrect the window.
	d.PointerMove(geometry.Point{X: 500, Y: 500})
	d.PointerUp()
	if _, err := d.Window(rec.ID); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("Window err = %v, want ErrNoWindow", err)
	}
}

func TestToggleMaximize_SyncsEngine(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("text")

	d.Manager().ToggleMaximize(rec.ID)
	full := geometry.Maximized(d.Settings().Manager.Screen)
	if got := d.engines[rec.ID].Geometry(); got != full {
		t.Fatalf("engine geometry = %s, want %s", got, full)
	}

	d.Manager().ToggleMaximize(rec.ID)
	if got := d.engines[rec.ID].Geometry(); got != rec.Geometry() {
		t.Fatalf("engine geometry after restore = %s, want %s", got, rec.Geometry())
	}
}

func TestMoveResize(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("text")

	target := geometry.Rect{
		Position: geometry.Point{X: 300, Y: 200},
		Extent:   geometry.Extent{Width: 50, Height: 500},
	}
	got, err := d.MoveResize(rec.ID, target)
	if err != nil {
		t.Fatalf("MoveResize: %v", err)
	}
	want := geometry.Rect{Position: target.Position, Extent: geometry.Extent{Width: 200, Height: 500}}
	if got.Geometry() != want {
		t.Fatalf("geometry = %s, want %s", got.Geometry(), want)
	}
	if e := d.engines[rec.ID].Geometry(); e != want {
		t.Fatalf("engine geometry = %s, want %s", e, want)
	}

	if _, err := d.MoveResize(99, target); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("unknown id err = %v", err)
	}

	d.PointerDown(rec.ID, geometry.Point{X: 310, Y: 205}, engine.KindMove, geometry.DirNone)
	if _, err := d.MoveResize(rec.ID, target); err == nil {
		t.Fatalf("MoveResize accepted during drag")
	}
}

func TestDragGesture_Resize(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("text")

	got, err := d.Drag(rec.ID, engine.KindResize, geometry.DirSE,
		geometry.Point{X: 500, Y: 400},
		geometry.Point{X: 520, Y: 410},
		geometry.Point{X: 550, Y: 430},
	)
	if err != nil {
		t.Fatalf("Drag: %v", err)
	}
	want := geometry.Rect{
		Position: geometry.Point{X: 100, Y: 100},
		Extent:   geometry.Extent{Width: 450, Height: 330},
	}
	if got.Geometry() != want {
		t.Fatalf("geometry = %s, want %s", got.Geometry(), want)
	}

	if _, err := d.Drag(42, engine.KindMove, geometry.DirNone, geometry.Point{}); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("unknown id err = %v", err)
	}
}

func TestApply_UpdatesScreen(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("text")

	d.SetScreen(geometry.Screen{Width: 800, Height: 600, Taskbar: 40})
	full, _ := d.Manager().ToggleMaximize(rec.ID)
	if full.Extent != (geometry.Extent{Width: 800, Height: 560}) {
		t.Fatalf("maximized extent = %s", full.Extent)
	}
	if d.Snapshot().Screen.Width != 800 {
		t.Fatalf("snapshot screen not updated")
	}
}

func TestOnChange_FiresForPreviewAndMutations(t *testing.T) {
	d := newTestDesktop(t)
	var n int
	d.OnChange(func() { n++ })

	rec, _ := d.Open("text")
	if n == 0 {
		t.Fatalf("no change after open")
	}
	before := n
	d.PointerDown(rec.ID, geometry.Point{X: 150, Y: 110}, engine.KindMove, geometry.DirNone)
	d.PointerMove(geometry.Point{X: 60, Y: 15})
	if n <= before {
		t.Fatalf("no change during drag")
	}
}

func TestTaskbarActivate_RestoresMinimized(t *testing.T) {
	d := newTestDesktop(t)
	rec, _ := d.Open("computer")
	d.Manager().MinimizeWindow(rec.ID)

	entries := d.Snapshot().Taskbar
	if len(entries) != 1 || entries[0].State != desktop.StateMinimized {
		t.Fatalf("entries = %+v", entries)
	}
	entries[0].Activate()

	got, _ := d.Window(rec.ID)
	if got.Minimized || !got.Active {
		t.Fatalf("record after activate = %+v", got)
	}
}
