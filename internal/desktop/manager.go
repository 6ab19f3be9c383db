package desktop

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/snapdesk/internal/bus"
	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Op names a manager mutation.
type Op string

const (
	OpCreate   Op = "create"
	OpClose    Op = "close"
	OpFocus    Op = "focus"
	OpMinimize Op = "minimize"
	OpGeometry Op = "geometry"
	OpMaximize Op = "maximize"
	OpRestore  Op = "restore"
)

// Change describes a completed mutation.
type Change struct {
	Op     Op
	ID     ID
	Record WindowRecord
}

// ChangeFunc observes manager mutations.
type ChangeFunc func(Change)

// Options configure window defaults.
type Options struct {
	Screen          geometry.Screen
	DefaultPosition geometry.Point
	DefaultExtent   geometry.Extent
	Min             geometry.Extent
}

// DefaultOptions mirrors the stock desktop: a 1280x800 screen with a 40px
// taskbar and 400x300 windows opened at 100,100.
func DefaultOptions() Options {
	return Options{
		Screen:          geometry.Screen{Width: 1280, Height: 800, Taskbar: 40},
		DefaultPosition: geometry.Point{X: 100, Y: 100},
		DefaultExtent:   geometry.Extent{Width: 400, Height: 300},
		Min:             geometry.Extent{Width: 200, Height: 150},
	}
}

// Manager creates, destroys, focuses and arranges windows. Operations on an
// id that no longer exists are silent no-ops. Manager is not safe for
// concurrent use; the session serializes access.
type Manager struct {
	store    Store
	nextID   ID
	opts     Options
	contents *Registry
	logger   *slog.Logger

	observers []ChangeFunc
	handler   *bus.Handler
	attached  *bus.Bus
}

// NewManager returns an empty manager. A nil registry uses DefaultRegistry.
func NewManager(opts Options, contents *Registry, logger *slog.Logger) *Manager {
	if contents == nil {
		contents = DefaultRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{
		opts:     opts,
		contents: contents,
		logger:   logger,
	}
	m.handler = bus.NewHandler("desktop.createWindow", func(payload any) error {
		tag, ok := payload.(string)
		if !ok {
			return fmt.Errorf("createWindow payload must be a content tag, got %T", payload)
		}
		m.CreateWindow(tag)
		return nil
	})
	return m
}

// ErrAlreadyAttached is returned when Attach is called with a second bus.
var ErrAlreadyAttached = errors.New("window manager already attached to a bus")

// Attach subscribes the manager to create-window requests on b. A manager
// subscribes once for its lifetime: repeating the call with the same bus is a
// no-op and a different bus is refused.
func (m *Manager) Attach(b *bus.Bus) error {
	if m.attached == b {
		return nil
	}
	if m.attached != nil {
		return ErrAlreadyAttached
	}
	if _, err := b.Subscribe(bus.CreateWindow, m.handler); err != nil {
		return fmt.Errorf("subscribe window manager: %w", err)
	}
	m.attached = b
	return nil
}

// OnChange registers an observer called after every mutation.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.observers = append(m.observers, fn)
}

// Options returns the manager's current options.
func (m *Manager) Options() Options { return m.opts }

// SetOptions replaces the screen and default geometry.
func (m *Manager) SetOptions(opts Options) { m.opts = opts }

// Contents returns the content registry.
func (m *Manager) Contents() *Registry { return m.contents }

// Windows returns every record in creation order.
func (m *Manager) Windows() []WindowRecord { return m.store.All() }

// Stack returns every record from bottom-most to top-most.
func (m *Manager) Stack() []WindowRecord { return m.store.ByZOrder() }

// Window returns the record for id.
func (m *Manager) Window(id ID) (WindowRecord, bool) {
	r := m.store.get(id)
	if r == nil {
		return WindowRecord{}, false
	}
	return r.clone(), true
}

// Active returns the active window, if any.
func (m *Manager) Active() (WindowRecord, bool) {
	for _, r := range m.store.records {
		if r.Active {
			return r.clone(), true
		}
	}
	return WindowRecord{}, false
}

func (m *Manager) notify(op Op, r *WindowRecord) {
	c := Change{Op: op, ID: r.ID, Record: r.clone()}
	for _, fn := range m.observers {
		fn(c)
	}
}

// CreateWindow opens a window showing contentTag on top of the stack and
// makes it the active window.
func (m *Manager) CreateWindow(contentTag string) WindowRecord {
	m.nextID++
	content := m.contents.Lookup(contentTag)

	extent := m.opts.DefaultExtent
	if content.Extent.Width > 0 && content.Extent.Height > 0 {
		extent = content.Extent
	}
	title := content.Title
	if title == "" {
		title = fmt.Sprintf("Window %d", m.store.Len()+1)
	}

	rec := WindowRecord{
		ID:         m.nextID,
		Title:      title,
		ContentTag: contentTag,
		ZOrder:     m.store.maxZ() + 1,
		Active:     true,
		Position:   m.opts.DefaultPosition,
		Extent:     extent.Clamp(m.opts.Min),
	}
	m.store.insert(rec)
	m.store.activate(rec.ID)

	m.logger.Debug("window created",
		slog.Int64("id", int64(rec.ID)),
		slog.String("content", contentTag),
		slog.Int("z", rec.ZOrder))
	m.notify(OpCreate, &rec)
	return rec
}

// CloseWindow removes id. Closing an unknown id does nothing.
func (m *Manager) CloseWindow(id ID) bool {
	r := m.store.get(id)
	if r == nil {
		return false
	}
	closed := r.clone()
	m.store.remove(id)
	m.logger.Debug("window closed", slog.Int64("id", int64(id)))
	m.notify(OpClose, &closed)
	return true
}

// FocusWindow raises id to the top, restores it if minimized and makes it
// the only active window.
func (m *Manager) FocusWindow(id ID) bool {
	r := m.store.get(id)
	if r == nil {
		return false
	}
	r.ZOrder = m.store.maxZ() + 1
	r.Minimized = false
	m.store.activate(id)
	m.notify(OpFocus, m.store.get(id))
	return true
}

// MinimizeWindow hides id and clears its active flag. Other records are
// untouched.
func (m *Manager) MinimizeWindow(id ID) bool {
	r := m.store.get(id)
	if r == nil {
		return false
	}
	r.Minimized = true
	r.Active = false
	m.notify(OpMinimize, r)
	return true
}

// UpdateGeometry overwrites the position and extent of id. It runs on every
// pointer move so it touches only the target record. A user-driven geometry
// change ends any maximized state.
func (m *Manager) UpdateGeometry(id ID, pos geometry.Point, ext geometry.Extent) bool {
	r := m.store.get(id)
	if r == nil {
		return false
	}
	r.Position = pos
	r.Extent = ext.Clamp(m.opts.Min)
	r.Restore = nil
	m.notify(OpGeometry, r)
	return true
}

// ToggleMaximize maximizes id to the usable screen, remembering its
// geometry, or restores the remembered geometry if it is already maximized.
func (m *Manager) ToggleMaximize(id ID) (WindowRecord, bool) {
	r := m.store.get(id)
	if r == nil {
		return WindowRecord{}, false
	}

	op := OpMaximize
	if r.Restore != nil {
		restore := *r.Restore
		r.Position = restore.Position
		r.Extent = restore.Extent
		r.Restore = nil
		op = OpRestore
	} else {
		prev := r.Geometry()
		r.Restore = &prev
		full := geometry.Maximized(m.opts.Screen)
		r.Position = full.Position
		r.Extent = full.Extent.Clamp(m.opts.Min)
	}

	m.notify(op, r)
	return r.clone(), true
}
