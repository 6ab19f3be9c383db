// Package mcp exposes a running snapdesk session as MCP tools.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/snapdesk/internal/desktop"
	"github.com/1broseidon/snapdesk/internal/ipc"
)

const (
	ServerName    = "snapdesk"
	ServerVersion = "0.1.0"
)

// Desktop is the session surface the tools drive. *ipc.Client implements it.
type Desktop interface {
	OpenWindow(tag string) (*desktop.WindowRecord, error)
	CloseWindow(id desktop.ID) error
	FocusWindow(id desktop.ID) (*desktop.WindowRecord, error)
	MinimizeWindow(id desktop.ID) (*desktop.WindowRecord, error)
	ToggleMaximize(id desktop.ID) (*desktop.WindowRecord, error)
	Drag(p ipc.DragPayload) (*desktop.WindowRecord, error)
	ListWindows() (*ipc.WindowsData, error)
}

var _ Desktop = (*ipc.Client)(nil)

// Server is the MCP server for a snapdesk session.
type Server struct {
	mcpServer *mcpsdk.Server
	desktop   Desktop
	logger    *slog.Logger
}

// NewServer creates an MCP server whose tools act on d.
func NewServer(d Desktop, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		desktop: d,
		logger:  logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a new desktop window showing the given content tag. The window is created on top of the stack at the default position and becomes the active window.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List every window in stacking order (bottom first) with its geometry and state, plus any live snap previews.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Raise a window to the top of the stack and make it active. A minimized window is restored.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "minimize_window",
		Description: "Minimize a window to the taskbar.",
	}, s.handleMinimizeWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Close a window.",
	}, s.handleCloseWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "toggle_maximize",
		Description: "Maximize a window to the usable screen, or restore its previous geometry if it is already maximized.",
	}, s.handleToggleMaximize)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "drag_window",
		Description: "Drag a window by its title bar so its top-left corner ends at (x, y). Releasing within the snap threshold of a screen edge or corner snaps the window to that half or quarter.",
	}, s.handleDragWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "resize_window",
		Description: "Resize a window by dragging one of its borders or corners by (dx, dy) pixels. The size never drops below the minimum window size.",
	}, s.handleResizeWindow)
}
