// Package engine turns a stream of pointer events for one window into
// committed geometry and snap-zone previews.
package engine

import (
	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/pointer"
)

// Options bound the geometry an engine may produce.
type Options struct {
	Screen    geometry.Screen
	Threshold int
	Min       geometry.Extent
}

// CommitFunc receives every committed geometry change, live moves included.
type CommitFunc func(id desktop.ID, pos geometry.Point, ext geometry.Extent)

// PreviewFunc receives the current snap-zone preview. A nil slice clears it.
type PreviewFunc func(id desktop.ID, zones []geometry.SnapZone)

// Hooks are the engine's callbacks into its owner.
type Hooks struct {
	OnCommit  CommitFunc
	OnPreview PreviewFunc
}

// Engine is the interaction state machine of a single window. It is driven
// from the session goroutine and is not safe for concurrent use.
type Engine struct {
	id    desktop.ID
	geom  geometry.Rect
	opts  Options
	hooks Hooks
	hub   *pointer.Hub

	mode     Mode
	zones    []geometry.SnapZone
	listener *pointer.Handle
	closed   bool
}

// New creates an idle engine for window id at the given geometry. Pointer
// listeners are acquired from hub while an interaction is active.
func New(id desktop.ID, geom geometry.Rect, hub *pointer.Hub, opts Options, hooks Hooks) *Engine {
	return &Engine{
		id:    id,
		geom:  geom,
		opts:  opts,
		hooks: hooks,
		hub:   hub,
		mode:  Idle{},
	}
}

// ID returns the window the engine belongs to.
func (e *Engine) ID() desktop.ID { return e.id }

// Mode returns the current interaction mode.
func (e *Engine) Mode() Mode { return e.mode }

// Geometry returns the last committed geometry.
func (e *Engine) Geometry() geometry.Rect { return e.geom }

// Zones returns the live preview zones.
func (e *Engine) Zones() []geometry.SnapZone { return e.zones }

// Active reports whether an interaction is in progress.
func (e *Engine) Active() bool { return e.mode.Phase() != PhaseIdle }

// SetOptions replaces the screen and snapping parameters.
func (e *Engine) SetOptions(opts Options) { e.opts = opts }

// Begin starts a move or resize at pointer p. It returns false without side
// effects when an interaction is already active, the engine is closed, or a
// resize has no direction.
func (e *Engine) Begin(p geometry.Point, kind Kind, dir geometry.Direction) bool {
	if e.closed || e.Active() {
		return false
	}

	switch kind {
	case KindResize:
		if dir == geometry.DirNone {
			return false
		}
		e.mode = Resizing{Direction: dir, StartPointer: p, Start: e.geom}
	default:
		e.mode = Dragging{Offset: p.Sub(e.geom.Position)}
	}

	if e.hub != nil {
		e.listener = e.hub.Acquire(e)
	}
	return true
}

// PointerMove implements pointer.Target. The candidate geometry is
// previewed against the snap zones and committed immediately.
func (e *Engine) PointerMove(p geometry.Point) {
	var candidate geometry.Rect
	switch m := e.mode.(type) {
	case Dragging:
		candidate = geometry.Rect{Position: p.Sub(m.Offset), Extent: e.geom.Extent}
	case Resizing:
		candidate = geometry.Resize(m.Direction, m.Start, p.Sub(m.StartPointer), e.opts.Min)
	default:
		return
	}

	e.setPreview(geometry.PreviewZones(candidate, e.opts.Screen, e.opts.Threshold))
	e.commit(candidate)
}

// PointerUp implements pointer.Target.
func (e *Engine) PointerUp() {
	e.End()
}

// End finishes the interaction: the last committed geometry is snapped to
// the first matching zone, if any, and committed again.
func (e *Engine) End() {
	if !e.Active() {
		return
	}

	final := e.geom
	if zone, ok := geometry.CommitZone(final, e.opts.Screen, e.opts.Threshold); ok {
		final = geometry.Rect{Position: zone.Anchor, Extent: zone.Extent.Clamp(e.opts.Min)}
	}

	e.reset()
	e.commit(final)
}

// Sync adopts geometry changed outside of a pointer gesture, such as a
// maximize toggle. It is refused while an interaction is active.
func (e *Engine) Sync(r geometry.Rect) bool {
	if e.Active() {
		return false
	}
	e.geom = r
	return true
}

// Close tears the engine down. Listeners are released even when the window
// goes away mid-gesture. Later calls are no-ops.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.reset()
	e.closed = true
}

func (e *Engine) reset() {
	e.mode = Idle{}
	e.listener.Release()
	e.listener = nil
	e.setPreview(nil)
}

func (e *Engine) setPreview(zones []geometry.SnapZone) {
	if len(zones) == 0 {
		if len(e.zones) == 0 {
			return
		}
		zones = nil
	}
	e.zones = zones
	if e.hooks.OnPreview != nil {
		e.hooks.OnPreview(e.id, zones)
	}
}

func (e *Engine) commit(r geometry.Rect) {
	e.geom = r
	if e.hooks.OnCommit != nil {
		e.hooks.OnCommit(e.id, r.Position, r.Extent)
	}
}
