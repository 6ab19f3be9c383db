package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
)

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	tag := strings.TrimSpace(args.Tag)
	if tag == "" {
		return nil, WindowOutput{}, fmt.Errorf("tag is required")
	}
	rec, err := s.desktop.OpenWindow(tag)
	if err != nil {
		s.logger.Warn("open_window failed", slog.String("tag", tag), slog.Any("error", err))
		return nil, WindowOutput{}, err
	}
	s.logger.Info("open_window", slog.String("tag", tag), slog.Int64("id", int64(rec.ID)))
	return nil, WindowOutput{Window: windowInfo(*rec)}, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	out := ListWindowsOutput{Windows: make([]WindowInfo, 0, len(data.Windows))}
	for _, w := range data.Windows {
		out.Windows = append(out.Windows, windowInfo(w))
	}
	for _, z := range data.Zones {
		out.Zones = append(out.Zones, zoneInfo(z))
	}
	return nil, out, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("focus_window", args.ID, s.desktop.FocusWindow)
}

func (s *Server) handleMinimizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("minimize_window", args.ID, s.desktop.MinimizeWindow)
}

func (s *Server) handleToggleMaximize(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	return s.windowOp("toggle_maximize", args.ID, s.desktop.ToggleMaximize)
}

func (s *Server) windowOp(tool string, id int64, fn func(desktop.ID) (*desktop.WindowRecord, error)) (*mcpsdk.CallToolResult, WindowOutput, error) {
	rec, err := fn(desktop.ID(id))
	if err != nil {
		s.logger.Warn(tool+" failed", slog.Int64("id", id), slog.Any("error", err))
		return nil, WindowOutput{}, err
	}
	s.logger.Info(tool, slog.Int64("id", id), slog.String("state", string(rec.State())))
	return nil, WindowOutput{Window: windowInfo(*rec)}, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowInput) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	if err := s.desktop.CloseWindow(desktop.ID(args.ID)); err != nil {
		s.logger.Warn("close_window failed", slog.Int64("id", args.ID), slog.Any("error", err))
		return nil, CloseWindowOutput{Closed: false}, err
	}
	s.logger.Info("close_window", slog.Int64("id", args.ID))
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Closed window %d", args.ID)},
		},
	}, CloseWindowOutput{Closed: true}, nil
}

func (s *Server) handleDragWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args DragWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	if args.Steps > ipc.MaxDragSteps {
		return nil, WindowOutput{}, fmt.Errorf("steps must be at most %d, got %d", ipc.MaxDragSteps, args.Steps)
	}
	rec, err := s.lookup(desktop.ID(args.ID))
	if err != nil {
		return nil, WindowOutput{}, err
	}
	from := rec.Position
	path := interpolate(from, geometry.Point{X: args.X, Y: args.Y}, args.Steps)

	moved, err := s.desktop.Drag(ipc.DragPayload{
		ID:   rec.ID,
		Kind: "move",
		From: from,
		Path: path,
	})
	if err != nil {
		s.logger.Warn("drag_window failed", slog.Int64("id", args.ID), slog.Any("error", err))
		return nil, WindowOutput{}, err
	}
	s.logger.Info("drag_window",
		slog.Int64("id", args.ID),
		slog.String("geometry", moved.Geometry().String()))
	return nil, WindowOutput{Window: windowInfo(*moved)}, nil
}

func (s *Server) handleResizeWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args ResizeWindowInput) (*mcpsdk.CallToolResult, WindowOutput, error) {
	dir, err := geometry.ParseDirection(strings.ToLower(strings.TrimSpace(args.Direction)))
	if err != nil {
		return nil, WindowOutput{}, err
	}
	rec, err := s.lookup(desktop.ID(args.ID))
	if err != nil {
		return nil, WindowOutput{}, err
	}
	from := rec.Position
	resized, err := s.desktop.Drag(ipc.DragPayload{
		ID:        rec.ID,
		Kind:      "resize",
		Direction: dir.String(),
		From:      from,
		Path:      []geometry.Point{from.Add(geometry.Point{X: args.DX, Y: args.DY})},
	})
	if err != nil {
		s.logger.Warn("resize_window failed", slog.Int64("id", args.ID), slog.Any("error", err))
		return nil, WindowOutput{}, err
	}
	s.logger.Info("resize_window",
		slog.Int64("id", args.ID),
		slog.String("direction", dir.String()),
		slog.String("geometry", resized.Geometry().String()))
	return nil, WindowOutput{Window: windowInfo(*resized)}, nil
}

func (s *Server) lookup(id desktop.ID) (desktop.WindowRecord, error) {
	data, err := s.desktop.ListWindows()
	if err != nil {
		return desktop.WindowRecord{}, err
	}
	for _, w := range data.Windows {
		if w.ID == id {
			return w, nil
		}
	}
	return desktop.WindowRecord{}, fmt.Errorf("no window with id %d", id)
}

// interpolate returns steps evenly spaced points from just past from up to
// and including to.
func interpolate(from, to geometry.Point, steps int) []geometry.Point {
	if steps < 1 {
		steps = 1
	}
	delta := to.Sub(from)
	path := make([]geometry.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		path = append(path, from.Add(geometry.Point{
			X: delta.X * i / steps,
			Y: delta.Y * i / steps,
		}))
	}
	return path
}
