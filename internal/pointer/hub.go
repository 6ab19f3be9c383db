// Package pointer fans session-wide pointer-move and pointer-up events out to
// the windows that are currently in an interaction.
package pointer

import (
	"sync"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Target receives global pointer events while it holds a Handle.
type Target interface {
	PointerMove(p geometry.Point)
	PointerUp()
}

// Handle is an attached listener. Release detaches it exactly once.
type Handle struct {
	hub    *Hub
	target Target
	once   sync.Once
}

// Release detaches the listener. Calling it again is a no-op.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.hub.detach(h)
	})
}

// Hub is the registry of attached pointer listeners. It is owned by the
// session goroutine and is not safe for concurrent use.
type Hub struct {
	handles []*Handle
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Acquire attaches t and returns the handle that detaches it.
func (h *Hub) Acquire(t Target) *Handle {
	handle := &Handle{hub: h, target: t}
	h.handles = append(h.handles, handle)
	return handle
}

func (h *Hub) detach(handle *Handle) {
	for i, existing := range h.handles {
		if existing == handle {
			h.handles = append(h.handles[:i], h.handles[i+1:]...)
			return
		}
	}
}

// Attached returns the number of live listeners.
func (h *Hub) Attached() int {
	return len(h.handles)
}

// Move dispatches a pointer move to every attached target in attach order.
func (h *Hub) Move(p geometry.Point) {
	for _, handle := range h.snapshot() {
		handle.target.PointerMove(p)
	}
}

// Up dispatches pointer release. Targets usually release their handle in
// response, so dispatch runs over a snapshot.
func (h *Hub) Up() {
	for _, handle := range h.snapshot() {
		handle.target.PointerUp()
	}
}

func (h *Hub) snapshot() []*Handle {
	out := make([]*Handle, len(h.handles))
	copy(out, h.handles)
	return out
}
