package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for socketPath.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

// call sends command with payload and decodes the response data into out
// when out is non-nil.
func (c *Client) call(command CommandType, payload any, out any) error {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// OpenWindow asks the daemon to launch a window showing tag.
func (c *Client) OpenWindow(tag string) (*desktop.WindowRecord, error) {
	var rec desktop.WindowRecord
	if err := c.call(CommandOpenWindow, OpenWindowPayload{Tag: tag}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CloseWindow closes id.
func (c *Client) CloseWindow(id desktop.ID) error {
	return c.call(CommandCloseWindow, WindowPayload{ID: id}, nil)
}

// FocusWindow raises and activates id.
func (c *Client) FocusWindow(id desktop.ID) (*desktop.WindowRecord, error) {
	return c.windowCall(CommandFocusWindow, id)
}

// MinimizeWindow hides id.
func (c *Client) MinimizeWindow(id desktop.ID) (*desktop.WindowRecord, error) {
	return c.windowCall(CommandMinimizeWindow, id)
}

// ToggleMaximize maximizes or restores id.
func (c *Client) ToggleMaximize(id desktop.ID) (*desktop.WindowRecord, error) {
	return c.windowCall(CommandToggleMaximize, id)
}

func (c *Client) windowCall(command CommandType, id desktop.ID) (*desktop.WindowRecord, error) {
	var rec desktop.WindowRecord
	if err := c.call(command, WindowPayload{ID: id}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MoveResize sets the geometry of id.
func (c *Client) MoveResize(id desktop.ID, r geometry.Rect) (*desktop.WindowRecord, error) {
	payload := MoveResizePayload{
		ID:     id,
		X:      r.Position.X,
		Y:      r.Position.Y,
		Width:  r.Extent.Width,
		Height: r.Extent.Height,
	}
	var rec desktop.WindowRecord
	if err := c.call(CommandMoveResize, payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Pointer feeds one pointer event to the daemon.
func (c *Client) Pointer(p PointerPayload) (*PointerData, error) {
	var data PointerData
	if err := c.call(CommandPointer, p, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Drag performs a complete move or resize gesture.
func (c *Client) Drag(p DragPayload) (*desktop.WindowRecord, error) {
	var rec desktop.WindowRecord
	if err := c.call(CommandDrag, p, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListWindows returns the windows in stacking order.
func (c *Client) ListWindows() (*WindowsData, error) {
	var data WindowsData
	if err := c.call(CommandListWindows, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
