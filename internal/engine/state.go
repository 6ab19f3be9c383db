package engine

import (
	"fmt"
	"strings"

	"github.com/1broseidon/snapdesk/internal/geometry"
)

// Phase is the coarse interaction phase of a window.
type Phase int

const (
	// PhaseIdle means no pointer gesture is in progress
	PhaseIdle Phase = iota
	// PhaseDragging means the window follows the pointer
	PhaseDragging
	// PhaseResizing means an edge or corner follows the pointer
	PhaseResizing
)

// String returns the string representation of the phase
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDragging:
		return "dragging"
	case PhaseResizing:
		return "resizing"
	default:
		return "unknown"
	}
}

// Kind selects what a new interaction does.
type Kind int

const (
	KindMove Kind = iota
	KindResize
)

func (k Kind) String() string {
	if k == KindResize {
		return "resize"
	}
	return "move"
}

// ParseKind parses "move" or "resize".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "move", "drag":
		return KindMove, nil
	case "resize":
		return KindResize, nil
	default:
		return KindMove, fmt.Errorf("unknown interaction kind %q", s)
	}
}

// Mode is the engine-local interaction state. It is one of Idle, Dragging
// or Resizing.
type Mode interface {
	Phase() Phase
}

// Idle is the resting mode.
type Idle struct{}

// Dragging carries the pointer-to-window offset recorded at pointer down.
type Dragging struct {
	Offset geometry.Point
}

// Resizing carries the grabbed edge and the geometry at pointer down.
type Resizing struct {
	Direction    geometry.Direction
	StartPointer geometry.Point
	Start        geometry.Rect
}

func (Idle) Phase() Phase     { return PhaseIdle }
func (Dragging) Phase() Phase { return PhaseDragging }
func (Resizing) Phase() Phase { return PhaseResizing }
