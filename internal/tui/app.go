package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/engine"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/platform"
	"github.com/1broseidon/snapdesk/internal/session"
)

const (
	doTimeout = 2 * time.Second
	// doubleClick is the longest gap between two title presses that still
	// toggles maximize.
	doubleClick = 400 * time.Millisecond
)

type changedMsg struct{}

type stoppedMsg struct{}

// model is the root bubbletea model of the terminal desktop.
type model struct {
	loop     *session.Loop
	contents *desktop.Registry
	keys     keyMap
	cell     geometry.Extent

	snap     session.Snapshot
	pressed  bool
	showHelp bool
	lastErr  string

	// A title press becomes a drag on the first motion, so a plain click
	// leaves the geometry alone.
	pending   *titlePress
	lastTitle titlePress
	now       func() time.Time

	width  int
	height int
}

type titlePress struct {
	id desktop.ID
	at geometry.Point
	t  time.Time
}

func newModel(loop *session.Loop, cell geometry.Extent) model {
	return model{
		loop: loop,
		keys: defaultKeyMap(),
		cell: cell,
		now:  time.Now,
	}
}

func (m model) view() view {
	return view{cols: m.width, rows: m.height, scale: scale{cell: m.cell}, snap: m.snap}
}

// do runs fn on the session loop and refreshes the snapshot.
func (m *model) do(fn func(d *session.Desktop) error) {
	ctx, cancel := context.WithTimeout(context.Background(), doTimeout)
	defer cancel()

	var snap session.Snapshot
	var contents *desktop.Registry
	err := m.loop.Do(ctx, func(d *session.Desktop) error {
		var err error
		if fn != nil {
			err = fn(d)
		}
		contents = d.Manager().Contents()
		snap = d.Snapshot()
		return err
	})
	if contents == nil {
		// The request never ran.
		m.lastErr = err.Error()
		return
	}
	m.snap, m.contents = snap, contents
	m.lastErr = ""
	if err != nil {
		m.lastErr = err.Error()
	}
}

func waitForChange(l *session.Loop) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-l.Changes():
			return changedMsg{}
		case <-l.Done():
			return stoppedMsg{}
		}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return waitForChange(m.loop)
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		screen := platform.CellScreen(m.width, m.height, m.cell, m.cell.Height)
		m.do(func(d *session.Desktop) error {
			d.SetScreen(screen)
			return nil
		})
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case changedMsg:
		m.do(nil)
		return m, waitForChange(m.loop)

	case stoppedMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *model) handleMouse(msg tea.MouseMsg) {
	p := m.view().scale.toScreen(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionMotion:
		if !m.pressed {
			return
		}
		pending := m.pending
		m.pending = nil
		started := true
		m.do(func(d *session.Desktop) error {
			if pending != nil {
				started = d.PointerDown(pending.id, pending.at, engine.KindMove, geometry.DirNone)
			}
			if started {
				d.PointerMove(p)
			}
			return nil
		})
		m.pressed = started

	case tea.MouseActionRelease:
		if !m.pressed {
			return
		}
		m.pressed = false
		if m.pending != nil {
			m.pending = nil
			return
		}
		m.do(func(d *session.Desktop) error {
			d.PointerUp()
			return nil
		})

	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		h := m.view().hitTest(msg.X, msg.Y)
		if h.kind == hitTitle {
			m.pressTitle(h.id, p)
			return
		}
		m.lastTitle = titlePress{}
		var pressed bool
		m.do(func(d *session.Desktop) error {
			var err error
			pressed, err = press(d, h, p)
			return err
		})
		m.pressed = pressed
	}
}

// pressTitle focuses the window and arms a drag, or toggles maximize when it
// is the second press on the same title within doubleClick.
func (m *model) pressTitle(id desktop.ID, p geometry.Point) {
	now := m.now()
	last := m.lastTitle
	if last.id == id && now.Sub(last.t) <= doubleClick {
		m.lastTitle = titlePress{}
		m.do(func(d *session.Desktop) error {
			d.Manager().FocusWindow(id)
			d.Manager().ToggleMaximize(id)
			return nil
		})
		return
	}
	m.lastTitle = titlePress{id: id, at: p, t: now}
	m.pending = &titlePress{id: id, at: p, t: now}
	m.pressed = true
	m.do(func(d *session.Desktop) error {
		d.Manager().FocusWindow(id)
		return nil
	})
}

// press applies a left-button press that landed on h. It reports whether a
// pointer interaction started.
func press(d *session.Desktop, h hit, p geometry.Point) (bool, error) {
	switch h.kind {
	case hitEdge:
		return d.PointerDown(h.id, p, engine.KindResize, h.dir), nil
	case hitBody:
		d.Manager().FocusWindow(h.id)
	case hitMinimize:
		d.Manager().MinimizeWindow(h.id)
	case hitMaximize:
		d.Manager().ToggleMaximize(h.id)
	case hitClose:
		d.Manager().CloseWindow(h.id)
	case hitIcon:
		return false, d.Launcher().Click(h.index)
	case hitTaskbar:
		if entries := d.Taskbar().Entries(); h.index < len(entries) {
			entries[h.index].Activate()
		}
	}
	return false, nil
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if !m.showHelp && m.lastErr == "" {
		return render(m.view(), m.contents)
	}

	v := m.view()
	v.rows--
	status := m.keys.helpLine()
	if m.lastErr != "" {
		status = "error: " + m.lastErr
	}
	bar := lipgloss.NewStyle().
		Width(m.width).
		MaxWidth(m.width).
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Render(status)
	return lipgloss.JoinVertical(lipgloss.Left, render(v, m.contents), bar)
}
