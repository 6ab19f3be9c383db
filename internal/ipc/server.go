package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/snapdesk/internal/engine"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/session"
)

const (
	// requestTimeout bounds how long a client may take to send its request
	// and how long the request may wait for the session loop.
	requestTimeout = 5 * time.Second
	// maxRequestBytes bounds a single request line.
	maxRequestBytes = 1 << 20
)

// ReloadFunc re-reads configuration and applies it to the session.
type ReloadFunc func(ctx context.Context) error

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	loop         *session.Loop
	reload       ReloadFunc
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	live         map[net.Conn]struct{}
	conns        sync.WaitGroup
}

// NewServer creates a server for loop on socketPath. A nil reload makes
// RELOAD report an error.
func NewServer(socketPath string, loop *session.Loop, reload ReloadFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		socketPath: socketPath,
		loop:       loop,
		reload:     reload,
		logger:     logger,
		startTime:  time.Now(),
		live:       make(map[net.Conn]struct{}),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket left by a crashed daemon.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("ipc: listening", slog.String("socket", s.socketPath))
	go s.acceptLoop()
	return nil
}

// Serve starts the server and stops it when ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping || errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("ipc: accept failed", slog.String("error", err.Error()))
			continue
		}

		if !s.track(conn) {
			conn.Close()
			return
		}
		go func() {
			defer s.untrack(conn)
			s.handleConnection(conn)
		}()
	}
}

// track registers conn so Stop can close it. It reports false once the
// server is stopping.
func (s *Server) track(conn net.Conn) bool {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()
	if s.shuttingDown {
		return false
	}
	s.live[conn] = struct{}{}
	s.conns.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.shutdownMu.Lock()
	delete(s.live, conn)
	s.shutdownMu.Unlock()
	s.conns.Done()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(requestTimeout))
	reader := bufio.NewReader(io.LimitReader(conn, maxRequestBytes))

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("ipc: read failed", slog.String("error", err.Error()))
		return
	}
	if err == io.EOF && len(data) >= maxRequestBytes {
		s.sendError(conn, fmt.Sprintf("request exceeds %d bytes", maxRequestBytes))
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("ipc: marshal response failed", slog.String("error", err.Error()))
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("ipc: write failed", slog.String("error", err.Error()))
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("ipc: request", slog.String("command", string(req.Command)))

	switch req.Command {
	case CommandOpenWindow:
		return s.handleOpenWindow(ctx, req.Payload)
	case CommandCloseWindow:
		return s.handleWindowOp(ctx, req.Payload, func(d *session.Desktop, p WindowPayload) (any, error) {
			if !d.Manager().CloseWindow(p.ID) {
				return nil, fmt.Errorf("%w: %d", session.ErrNoWindow, p.ID)
			}
			return nil, nil
		})
	case CommandFocusWindow:
		return s.handleWindowOp(ctx, req.Payload, func(d *session.Desktop, p WindowPayload) (any, error) {
			if !d.Manager().FocusWindow(p.ID) {
				return nil, fmt.Errorf("%w: %d", session.ErrNoWindow, p.ID)
			}
			return d.Window(p.ID)
		})
	case CommandMinimizeWindow:
		return s.handleWindowOp(ctx, req.Payload, func(d *session.Desktop, p WindowPayload) (any, error) {
			if !d.Manager().MinimizeWindow(p.ID) {
				return nil, fmt.Errorf("%w: %d", session.ErrNoWindow, p.ID)
			}
			return d.Window(p.ID)
		})
	case CommandToggleMaximize:
		return s.handleWindowOp(ctx, req.Payload, func(d *session.Desktop, p WindowPayload) (any, error) {
			if d.Interacting(p.ID) {
				return nil, fmt.Errorf("window %d is being dragged", p.ID)
			}
			rec, ok := d.Manager().ToggleMaximize(p.ID)
			if !ok {
				return nil, fmt.Errorf("%w: %d", session.ErrNoWindow, p.ID)
			}
			return rec, nil
		})
	case CommandMoveResize:
		return s.handleMoveResize(ctx, req.Payload)
	case CommandPointer:
		return s.handlePointer(ctx, req.Payload)
	case CommandDrag:
		return s.handleDrag(ctx, req.Payload)
	case CommandListWindows:
		return s.handleListWindows(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	case CommandReload:
		return s.handleReload(ctx)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// respond runs fn on the session loop and wraps its result.
func (s *Server) respond(ctx context.Context, fn func(d *session.Desktop) (any, error)) *Response {
	var data any
	err := s.loop.Do(ctx, func(d *session.Desktop) error {
		var err error
		data, err = fn(d)
		return err
	})
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleOpenWindow(ctx context.Context, raw json.RawMessage) *Response {
	var p OpenWindowPayload
	if err := decodePayload(raw, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if p.Tag == "" {
		return NewErrorResponse("tag is required")
	}
	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		return d.Open(p.Tag)
	})
}

func (s *Server) handleWindowOp(ctx context.Context, raw json.RawMessage, fn func(*session.Desktop, WindowPayload) (any, error)) *Response {
	var p WindowPayload
	if err := decodePayload(raw, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		return fn(d, p)
	})
}

func (s *Server) handleMoveResize(ctx context.Context, raw json.RawMessage) *Response {
	var p MoveResizePayload
	if err := decodePayload(raw, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		return d.MoveResize(p.ID, p.Rect())
	})
}

func (s *Server) handlePointer(ctx context.Context, raw json.RawMessage) *Response {
	var p PointerPayload
	if err := decodePayload(raw, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	pt := geometry.Point{X: p.X, Y: p.Y}

	var kind engine.Kind
	var dir geometry.Direction
	if p.Action == PointerDown {
		var err error
		if kind, dir, err = parseGesture(p.Kind, p.Direction); err != nil {
			return NewErrorResponse(err.Error())
		}
	}

	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		out := PointerData{Accepted: true}
		switch p.Action {
		case PointerDown:
			out.Accepted = d.PointerDown(p.ID, pt, kind, dir)
		case PointerMove:
			d.PointerMove(pt)
		case PointerUp:
			d.PointerUp()
		default:
			return nil, fmt.Errorf("unknown pointer action %q", p.Action)
		}
		out.Zones = d.Snapshot().Zones
		return out, nil
	})
}

func (s *Server) handleDrag(ctx context.Context, raw json.RawMessage) *Response {
	var p DragPayload
	if err := decodePayload(raw, &p); err != nil {
		return NewErrorResponse(err.Error())
	}
	if len(p.Path) > MaxDragSteps {
		return NewErrorResponse(fmt.Sprintf("drag path has %d points, limit is %d", len(p.Path), MaxDragSteps))
	}
	kind, dir, err := parseGesture(p.Kind, p.Direction)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		return d.Drag(p.ID, kind, dir, p.From, p.Path...)
	})
}

func parseGesture(kindName, dirName string) (engine.Kind, geometry.Direction, error) {
	if kindName == "" {
		kindName = "move"
	}
	kind, err := engine.ParseKind(kindName)
	if err != nil {
		return 0, 0, err
	}
	dir := geometry.DirNone
	if kind == engine.KindResize {
		if dir, err = geometry.ParseDirection(dirName); err != nil {
			return 0, 0, err
		}
	}
	return kind, dir, nil
}

func (s *Server) handleListWindows(ctx context.Context) *Response {
	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		snap := d.Snapshot()
		return WindowsData{Windows: snap.Windows, Zones: snap.Zones}, nil
	})
}

func (s *Server) handleGetStatus(ctx context.Context) *Response {
	return s.respond(ctx, func(d *session.Desktop) (any, error) {
		status := StatusData{
			SessionID:     d.ID(),
			WindowCount:   len(d.Manager().Windows()),
			Screen:        d.Settings().Manager.Screen,
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
		}
		if rec, ok := d.Manager().Active(); ok {
			status.ActiveWindow = rec.ID
		}
		return status, nil
	})
}

func (s *Server) handleReload(ctx context.Context) *Response {
	s.logger.Info("ipc: reload requested")
	if s.reload == nil {
		return NewErrorResponse("reload is not supported by this daemon")
	}
	if err := s.reload(ctx); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop shuts down the listener, closes connections still waiting on a
// request, waits for their handlers and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	for conn := range s.live {
		conn.Close()
	}
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.conns.Wait()
	os.Remove(s.socketPath)
}
