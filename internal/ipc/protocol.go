package ipc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandOpenWindow     CommandType = "OPEN_WINDOW"
	CommandCloseWindow    CommandType = "CLOSE_WINDOW"
	CommandFocusWindow    CommandType = "FOCUS_WINDOW"
	CommandMinimizeWindow CommandType = "MINIMIZE_WINDOW"
	CommandToggleMaximize CommandType = "TOGGLE_MAXIMIZE"
	CommandMoveResize     CommandType = "MOVE_RESIZE"
	CommandPointer        CommandType = "POINTER"
	CommandDrag           CommandType = "DRAG"
	CommandListWindows    CommandType = "LIST_WINDOWS"
	CommandGetStatus      CommandType = "GET_STATUS"
	CommandReload         CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	SessionID     string          `json:"session_id"`
	WindowCount   int             `json:"window_count"`
	ActiveWindow  desktop.ID      `json:"active_window,omitempty"`
	Screen        geometry.Screen `json:"screen"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	DaemonRunning bool            `json:"daemon_running"`
}

// Uptime returns the daemon uptime as a duration.
func (s StatusData) Uptime() time.Duration {
	return time.Duration(s.UptimeSeconds) * time.Second
}

// WindowsData represents the data returned by LIST_WINDOWS. Windows are in
// stacking order, bottom first.
type WindowsData struct {
	Windows []desktop.WindowRecord `json:"windows"`
	Zones   []geometry.SnapZone    `json:"zones,omitempty"`
}

// OpenWindowPayload is the payload for OPEN_WINDOW.
type OpenWindowPayload struct {
	Tag string `json:"tag"`
}

// WindowPayload names the target of CLOSE_WINDOW, FOCUS_WINDOW,
// MINIMIZE_WINDOW and TOGGLE_MAXIMIZE.
type WindowPayload struct {
	ID desktop.ID `json:"id"`
}

// MoveResizePayload is the payload for MOVE_RESIZE.
type MoveResizePayload struct {
	ID     desktop.ID `json:"id"`
	X      int        `json:"x"`
	Y      int        `json:"y"`
	Width  int        `json:"width"`
	Height int        `json:"height"`
}

// Rect returns the requested geometry.
func (p MoveResizePayload) Rect() geometry.Rect {
	return geometry.Rect{
		Position: geometry.Point{X: p.X, Y: p.Y},
		Extent:   geometry.Extent{Width: p.Width, Height: p.Height},
	}
}

// Pointer actions.
const (
	PointerDown = "down"
	PointerMove = "move"
	PointerUp   = "up"
)

// PointerPayload is the payload for POINTER. ID, Kind and Direction are
// only read for "down".
type PointerPayload struct {
	Action    string     `json:"action"`
	ID        desktop.ID `json:"id,omitempty"`
	X         int        `json:"x"`
	Y         int        `json:"y"`
	Kind      string     `json:"kind,omitempty"`
	Direction string     `json:"direction,omitempty"`
}

// PointerData is the result of POINTER.
type PointerData struct {
	Accepted bool                `json:"accepted"`
	Zones    []geometry.SnapZone `json:"zones,omitempty"`
}

// MaxDragSteps caps the pointer moves a single DRAG may replay. The whole
// gesture runs in one session-loop turn.
const MaxDragSteps = 1000

// DragPayload is the payload for DRAG: a complete gesture from From through
// every point of Path, then release.
type DragPayload struct {
	ID        desktop.ID       `json:"id"`
	Kind      string           `json:"kind"`
	Direction string           `json:"direction,omitempty"`
	From      geometry.Point   `json:"from"`
	Path      []geometry.Point `json:"path"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
