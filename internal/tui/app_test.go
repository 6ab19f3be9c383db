package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/session"
)

func newTestModel(t *testing.T) (model, *session.Loop) {
	t.Helper()
	d, err := session.NewDesktop(session.DefaultSettings(), nil, nil)
	if err != nil {
		t.Fatalf("NewDesktop: %v", err)
	}
	loop := session.NewLoop(d)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)

	m := newModel(loop, testCell)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	return next.(model), loop
}

func mouse(m model, action tea.MouseAction, x, y int) model {
	next, _ := m.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
	return next.(model)
}

func openWindow(t *testing.T, loop *session.Loop, tag string) desktop.WindowRecord {
	t.Helper()
	var rec desktop.WindowRecord
	err := loop.Do(context.Background(), func(d *session.Desktop) error {
		var err error
		rec, err = d.Open(tag)
		return err
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return rec
}

func TestModel_ResizeSetsScreen(t *testing.T) {
	m, _ := newTestModel(t)
	want := geometry.Screen{Width: 1280, Height: 800, Taskbar: 16}
	if m.snap.Screen != want {
		t.Fatalf("screen = %+v, want %+v", m.snap.Screen, want)
	}
}

func TestModel_DragTitleMovesWindow(t *testing.T) {
	m, loop := newTestModel(t)
	rec := openWindow(t, loop, "text")
	next, _ := m.Update(changedMsg{})
	m = next.(model)

	m = mouse(m, tea.MouseActionPress, 20, 7)
	if !m.pressed {
		t.Fatalf("title press did not start a drag")
	}
	m = mouse(m, tea.MouseActionMotion, 40, 17)
	m = mouse(m, tea.MouseActionRelease, 40, 17)

	got := m.snap.Windows[0]
	if got.ID != rec.ID || got.Position != (geometry.Point{X: 260, Y: 260}) {
		t.Fatalf("window after drag = %+v", got)
	}
	if m.snap.Pointer != 0 {
		t.Fatalf("listeners after release = %d", m.snap.Pointer)
	}
}

func TestModel_DoubleClickTitleTogglesMaximize(t *testing.T) {
	m, loop := newTestModel(t)
	rec := openWindow(t, loop, "text")
	next, _ := m.Update(changedMsg{})
	m = next.(model)

	clock := time.Unix(1000, 0)
	m.now = func() time.Time { return clock }
	click := func(x, y int) {
		m = mouse(m, tea.MouseActionPress, x, y)
		m = mouse(m, tea.MouseActionRelease, x, y)
		clock = clock.Add(100 * time.Millisecond)
	}

	click(20, 7)
	if got := m.snap.Windows[0]; got.Maximized() || got.Geometry() != rec.Geometry() {
		t.Fatalf("single click changed the window: %+v", got)
	}
	if m.snap.Pointer != 0 {
		t.Fatalf("listeners after click = %d", m.snap.Pointer)
	}
	click(20, 7)
	if !m.snap.Windows[0].Maximized() {
		t.Fatalf("double click did not maximize")
	}

	// The maximized title bar is the second row of the screen.
	click(20, 1)
	click(20, 1)
	if got := m.snap.Windows[0]; got.Maximized() || got.Geometry() != rec.Geometry() {
		t.Fatalf("double click did not restore: %+v", got)
	}

	// Presses further apart than the double click gap are two single clicks.
	m = mouse(m, tea.MouseActionPress, 20, 7)
	m = mouse(m, tea.MouseActionRelease, 20, 7)
	clock = clock.Add(time.Second)
	click(20, 7)
	if m.snap.Windows[0].Maximized() {
		t.Fatalf("slow clicks maximized the window")
	}
}

func TestModel_ResizeFromCorner(t *testing.T) {
	m, loop := newTestModel(t)
	openWindow(t, loop, "text")
	next, _ := m.Update(changedMsg{})
	m = next.(model)

	m = mouse(m, tea.MouseActionPress, 61, 23)
	m = mouse(m, tea.MouseActionMotion, 71, 28)
	m = mouse(m, tea.MouseActionRelease, 71, 28)

	if got := m.snap.Windows[0].Extent; got != (geometry.Extent{Width: 480, Height: 380}) {
		t.Fatalf("extent after resize = %s", got)
	}
}

func TestModel_ButtonsIconsAndTaskbar(t *testing.T) {
	m, loop := newTestModel(t)
	openWindow(t, loop, "text")
	next, _ := m.Update(changedMsg{})
	m = next.(model)

	m = mouse(m, tea.MouseActionPress, 52, 7)
	if !m.snap.Windows[0].Minimized {
		t.Fatalf("minimize button did not minimize")
	}
	m = mouse(m, tea.MouseActionPress, 4, 49)
	if m.snap.Windows[0].Minimized || !m.snap.Windows[0].Active {
		t.Fatalf("taskbar entry did not restore: %+v", m.snap.Windows[0])
	}

	m = mouse(m, tea.MouseActionPress, 55, 7)
	if !m.snap.Windows[0].Maximized() {
		t.Fatalf("maximize button did not maximize")
	}
	// Maximized, the close button sits at the right of the full width title.
	m = mouse(m, tea.MouseActionPress, 156, 1)
	if len(m.snap.Windows) != 0 {
		t.Fatalf("close button left %d windows", len(m.snap.Windows))
	}

	m = mouse(m, tea.MouseActionPress, 3, 1)
	if len(m.snap.Windows) != 1 || m.snap.Windows[0].Title != "My Computer" {
		t.Fatalf("icon click windows = %+v", m.snap.Windows)
	}
}

func TestModel_QuitAndHelp(t *testing.T) {
	m, _ := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'?'}})
	m = next.(model)
	if !m.showHelp || !strings.Contains(m.View(), "toggle help") {
		t.Fatalf("help not shown")
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q did not quit")
	}
}

func TestRender_DrawsWindowsZonesAndTaskbar(t *testing.T) {
	v := testView(window(1, 100, 100, 400, 300, 1))
	v.snap.Windows[0].Active = true
	v.snap.Windows[0].Title = "Notes"
	v.snap.Zones = []geometry.SnapZone{geometry.Zone(geometry.ZoneRight, geometry.Screen{Width: 1280, Height: 800, Taskbar: 16})}

	out := render(v, desktop.DefaultRegistry())
	for _, want := range []string{"Notes", "[x]", "right-half", "Window 1", "[My Computer]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output lacks %q", want)
		}
	}
	if lines := strings.Count(out, "\n") + 1; lines != 50 {
		t.Fatalf("render produced %d lines, want 50", lines)
	}
}
