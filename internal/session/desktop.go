// Package session wires the window manager, the per-window geometry engines,
// the pointer hub and the bus into one desktop, and serializes access to it.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/snapdesk/internal/bus"
	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/engine"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/pointer"
)

// ErrNoWindow is returned when an operation needs a window that does not
// exist. Manager operations themselves stay silent; only callers that must
// report an outcome (CLI, MCP) see this.
var ErrNoWindow = errors.New("no such window")

// Settings are the tunable parts of a desktop.
type Settings struct {
	Manager   desktop.Options
	Threshold int
	Icons     []desktop.Icon
	// TaskbarLabel is the maximum taskbar label length in grapheme clusters.
	TaskbarLabel int
}

// DefaultSettings returns the stock desktop settings.
func DefaultSettings() Settings {
	return Settings{
		Manager:      desktop.DefaultOptions(),
		Threshold:    20,
		Icons:        desktop.DefaultIcons,
		TaskbarLabel: 16,
	}
}

// Snapshot is a read-only copy of the desktop for rendering and reporting.
type Snapshot struct {
	SessionID string                 `json:"session_id"`
	Screen    geometry.Screen        `json:"screen"`
	Windows   []desktop.WindowRecord `json:"windows"`
	Zones     []geometry.SnapZone    `json:"zones,omitempty"`
	Taskbar   []desktop.Entry        `json:"-"`
	Icons     []desktop.Icon         `json:"icons"`
	Pointer   int                    `json:"pointer_listeners"`
}

// Desktop is a complete window-manager session. It is single-threaded: use
// it from one goroutine, or through a Loop.
type Desktop struct {
	id       string
	started  time.Time
	logger   *slog.Logger
	settings Settings

	bus      *bus.Bus
	manager  *desktop.Manager
	hub      *pointer.Hub
	launcher *desktop.Launcher
	taskbar  *desktop.Taskbar

	engines map[desktop.ID]*engine.Engine
	zones   map[desktop.ID][]geometry.SnapZone

	onChange []func()
}

// NewDesktop builds a desktop. A nil registry uses the stock contents.
func NewDesktop(settings Settings, contents *desktop.Registry, logger *slog.Logger) (*Desktop, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Desktop{
		id:       uuid.NewString(),
		started:  time.Now(),
		logger:   logger,
		settings: settings,
		bus:      bus.New(logger, bus.DefaultTopics...),
		hub:      pointer.NewHub(),
		engines:  make(map[desktop.ID]*engine.Engine),
		zones:    make(map[desktop.ID][]geometry.SnapZone),
	}
	d.manager = desktop.NewManager(settings.Manager, contents, logger)
	d.manager.OnChange(d.observe)
	if err := d.manager.Attach(d.bus); err != nil {
		return nil, err
	}
	d.launcher = desktop.NewLauncher(d.bus, settings.Icons)
	d.taskbar = desktop.NewTaskbar(d.manager, settings.TaskbarLabel)

	logger.Info("desktop session started",
		slog.String("session", d.id),
		slog.String("screen", fmt.Sprintf("%dx%d", settings.Manager.Screen.Width, settings.Manager.Screen.Height)))
	return d, nil
}

// ID returns the session id.
func (d *Desktop) ID() string { return d.id }

// Started returns when the session was created.
func (d *Desktop) Started() time.Time { return d.started }

// Manager returns the window manager.
func (d *Desktop) Manager() *desktop.Manager { return d.manager }

// Hub returns the pointer hub.
func (d *Desktop) Hub() *pointer.Hub { return d.hub }

// Launcher returns the desktop icon launcher.
func (d *Desktop) Launcher() *desktop.Launcher { return d.launcher }

// Taskbar returns the taskbar projection.
func (d *Desktop) Taskbar() *desktop.Taskbar { return d.taskbar }

// Settings returns the current settings.
func (d *Desktop) Settings() Settings { return d.settings }

// OnChange registers fn to run after any visible change.
func (d *Desktop) OnChange(fn func()) {
	d.onChange = append(d.onChange, fn)
}

func (d *Desktop) changed() {
	for _, fn := range d.onChange {
		fn()
	}
}

func (d *Desktop) engineOptions() engine.Options {
	return engine.Options{
		Screen:    d.settings.Manager.Screen,
		Threshold: d.settings.Threshold,
		Min:       d.settings.Manager.Min,
	}
}

// observe keeps one engine per live window.
func (d *Desktop) observe(c desktop.Change) {
	switch c.Op {
	case desktop.OpCreate:
		d.engines[c.ID] = engine.New(c.ID, c.Record.Geometry(), d.hub, d.engineOptions(), engine.Hooks{
			OnCommit:  d.commit,
			OnPreview: d.preview,
		})
	case desktop.OpClose:
		if e, ok := d.engines[c.ID]; ok {
			e.Close()
			delete(d.engines, c.ID)
		}
		delete(d.zones, c.ID)
	case desktop.OpMaximize, desktop.OpRestore, desktop.OpGeometry:
		if e, ok := d.engines[c.ID]; ok {
			e.Sync(c.Record.Geometry())
		}
	}
	d.changed()
}

func (d *Desktop) commit(id desktop.ID, pos geometry.Point, ext geometry.Extent) {
	d.manager.UpdateGeometry(id, pos, ext)
}

func (d *Desktop) preview(id desktop.ID, zones []geometry.SnapZone) {
	if zones == nil {
		delete(d.zones, id)
	} else {
		d.zones[id] = zones
	}
	d.changed()
}

// Apply replaces the settings of a running desktop. Existing windows keep
// their geometry; engines pick up the new screen and snapping parameters.
func (d *Desktop) Apply(settings Settings) {
	d.settings = settings
	d.manager.SetOptions(settings.Manager)
	for _, e := range d.engines {
		e.SetOptions(d.engineOptions())
	}
	d.launcher = desktop.NewLauncher(d.bus, settings.Icons)
	d.taskbar = desktop.NewTaskbar(d.manager, settings.TaskbarLabel)
	d.logger.Info("desktop settings applied",
		slog.Int("threshold", settings.Threshold),
		slog.String("screen", fmt.Sprintf("%dx%d", settings.Manager.Screen.Width, settings.Manager.Screen.Height)))
	d.changed()
}

// SetScreen changes only the screen bound.
func (d *Desktop) SetScreen(s geometry.Screen) {
	settings := d.settings
	settings.Manager.Screen = s
	d.Apply(settings)
}

// Open launches a window through the bus and returns its record.
func (d *Desktop) Open(tag string) (desktop.WindowRecord, error) {
	before := len(d.manager.Windows())
	if err := d.launcher.Launch(tag); err != nil {
		return desktop.WindowRecord{}, err
	}
	rec, ok := d.manager.Active()
	if !ok || len(d.manager.Windows()) == before {
		return desktop.WindowRecord{}, fmt.Errorf("window for %q was not created", tag)
	}
	return rec, nil
}

// Window returns the record for id or ErrNoWindow.
func (d *Desktop) Window(id desktop.ID) (desktop.WindowRecord, error) {
	rec, ok := d.manager.Window(id)
	if !ok {
		return desktop.WindowRecord{}, fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	return rec, nil
}

// MoveResize sets the geometry of id directly.
func (d *Desktop) MoveResize(id desktop.ID, r geometry.Rect) (desktop.WindowRecord, error) {
	if e, ok := d.engines[id]; ok && e.Active() {
		return desktop.WindowRecord{}, fmt.Errorf("window %d is being dragged", id)
	}
	if !d.manager.UpdateGeometry(id, r.Position, r.Extent) {
		return desktop.WindowRecord{}, fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	return d.Window(id)
}

// PointerDown focuses id and starts an interaction at p.
func (d *Desktop) PointerDown(id desktop.ID, p geometry.Point, kind engine.Kind, dir geometry.Direction) bool {
	e, ok := d.engines[id]
	if !ok {
		return false
	}
	d.manager.FocusWindow(id)
	return e.Begin(p, kind, dir)
}

// PointerMove feeds a global pointer move.
func (d *Desktop) PointerMove(p geometry.Point) {
	d.hub.Move(p)
}

// PointerUp feeds a global pointer release.
func (d *Desktop) PointerUp() {
	d.hub.Up()
}

// Drag performs a complete gesture on id: pointer down at from, a move
// through each point in path, then release.
func (d *Desktop) Drag(id desktop.ID, kind engine.Kind, dir geometry.Direction, from geometry.Point, path ...geometry.Point) (desktop.WindowRecord, error) {
	if _, ok := d.engines[id]; !ok {
		return desktop.WindowRecord{}, fmt.Errorf("%w: %d", ErrNoWindow, id)
	}
	if !d.PointerDown(id, from, kind, dir) {
		return desktop.WindowRecord{}, fmt.Errorf("window %d is already in an interaction", id)
	}
	for _, p := range path {
		d.PointerMove(p)
	}
	d.PointerUp()
	return d.Window(id)
}

// Interacting reports whether id has an active interaction.
func (d *Desktop) Interacting(id desktop.ID) bool {
	e, ok := d.engines[id]
	return ok && e.Active()
}

// Snapshot copies the desktop state.
func (d *Desktop) Snapshot() Snapshot {
	var zones []geometry.SnapZone
	for _, rec := range d.manager.Stack() {
		zones = append(zones, d.zones[rec.ID]...)
	}
	return Snapshot{
		SessionID: d.id,
		Screen:    d.settings.Manager.Screen,
		Windows:   d.manager.Stack(),
		Zones:     zones,
		Taskbar:   d.taskbar.Entries(),
		Icons:     d.launcher.Icons(),
		Pointer:   d.hub.Attached(),
	}
}
