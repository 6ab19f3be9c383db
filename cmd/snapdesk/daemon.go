package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/1broseidon/snapdesk/internal/config"
	"github.com/1broseidon/snapdesk/internal/daemon"
	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/ipc"
	"github.com/1broseidon/snapdesk/internal/platform"
	"github.com/1broseidon/snapdesk/internal/runtimepath"
	"github.com/1broseidon/snapdesk/internal/session"
	"github.com/1broseidon/snapdesk/internal/tui"
)

func runDaemonCmd(args []string) int {
	fs := newFlagSet("daemon", "Usage: snapdesk daemon [--path PATH]",
		"Run a headless desktop session. Drive it with the window commands,",
		"'snapdesk mcp serve' or a second 'snapdesk tui' client.")
	path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}
	return runSession(*path, false)
}

func runTUI(args []string) int {
	fs := newFlagSet("tui", "Usage: snapdesk tui [--path PATH]",
		"Run a desktop session in the terminal. The session also serves IPC,",
		"so the window commands and 'snapdesk mcp serve' act on it.",
		"",
		"Mouse:",
		"  drag title bar     Move window (release near an edge to snap)",
		"  drag border        Resize window",
		"  [_] [□] [x]        Minimize, maximize/restore, close",
		"  click icon         Open a window",
		"  click taskbar      Focus or restore a window",
		"",
		"Keys:",
		"  ?                  Toggle help",
		"  q, Ctrl+C          Quit")
	path := fs.String("path", "", "Config file path (default: ~/.config/snapdesk/config.yaml)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	return runSession(*path, true)
}

// sessionHost owns one desktop session and the front-ends serving it.
type sessionHost struct {
	path        string
	interactive bool
	level       *slog.LevelVar
	logger      *slog.Logger
	loop        *session.Loop
}

func runSession(path string, interactive bool) int {
	res, err := loadConfig(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if path == "" {
		if path, err = config.DefaultConfigPath(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	cfg := res.Config

	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logOut, closeLog, err := logOutput(interactive)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	d := &sessionHost{path: path, interactive: interactive, level: level, logger: logger}
	screen := d.screen(cfg)

	desk, err := session.NewDesktop(cfg.Settings(screen), cfg.Registry(), logger)
	if err != nil {
		logger.Error("failed to create desktop session", slog.String("error", err.Error()))
		return 1
	}
	d.loop = session.NewLoop(desk)

	if err := d.run(context.Background(), cfg); err != nil {
		if interactive {
			fmt.Fprintln(os.Stderr, err)
		}
		logger.Error("session error", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("session stopped")
	return 0
}

// logOutput returns stderr, or a file in the runtime directory when the
// terminal is taken by the desktop.
func logOutput(interactive bool) (io.Writer, func(), error) {
	if !interactive {
		return os.Stderr, func() {}, nil
	}
	path, err := runtimepath.LogPath()
	if err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// screen resolves the bound for cfg. The terminal desktop sets its own
// screen from the window size, so the configured bound only seeds it.
func (d *sessionHost) screen(cfg *config.Config) geometry.Screen {
	if d.interactive {
		return cfg.ScreenBound()
	}
	src, err := platform.FromConfig(cfg)
	if err != nil {
		d.logger.Warn("screen source unavailable", slog.String("error", err.Error()))
		return cfg.ScreenBound()
	}
	screen, err := platform.Resolve(src, cfg.ScreenBound())
	if err != nil {
		d.logger.Warn("screen source failed, using configured screen", slog.String("error", err.Error()))
	}
	return screen
}

// apply pushes cfg into the running session.
func (d *sessionHost) apply(ctx context.Context, cfg *config.Config) error {
	d.level.Set(cfg.SlogLevel())
	var screen *geometry.Screen
	if !d.interactive {
		s := d.screen(cfg)
		screen = &s
	}
	return d.loop.Do(ctx, func(desk *session.Desktop) error {
		current := desk.Settings().Manager.Screen
		if screen != nil {
			current = *screen
		}
		desk.Apply(cfg.Settings(current))
		return nil
	})
}

func (d *sessionHost) reload(ctx context.Context) error {
	res, err := config.LoadFromPath(d.path)
	if err != nil {
		return err
	}
	return d.apply(ctx, res.Config)
}

func (d *sessionHost) run(parent context.Context, cfg *config.Config) error {
	logger := d.logger
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}
	server := ipc.NewServer(socketPath, d.loop, d.reload, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.loop.Run(gCtx)
	})

	g.Go(func() error {
		return server.Serve(gCtx)
	})

	if _, err := os.Stat(filepath.Dir(d.path)); err == nil {
		g.Go(func() error {
			return config.Watch(gCtx, d.path, logger, func(res *config.LoadResult) {
				if err := d.apply(gCtx, res.Config); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, session.ErrStopped) {
					logger.Warn("config reload failed", slog.String("error", err.Error()))
				}
			})
		})
	} else {
		logger.Info("config watcher: disabled, no config directory", slog.String("path", d.path))
	}

	if !d.interactive && cfg.ScreenSource != config.ScreenStatic && cfg.ScreenPoll > 0 {
		if src, err := platform.FromConfig(cfg); err == nil {
			r := daemon.NewReconciler(daemon.ReconcilerConfig{Interval: cfg.ScreenPoll, Logger: logger}, src, d.loop)
			g.Go(func() error {
				r.Run(gCtx)
				return nil
			})
		}
	}

	if d.interactive {
		cell := geometry.Extent{Width: cfg.TUI.CellWidth, Height: cfg.TUI.CellHeight}
		g.Go(func() error {
			defer cancel()
			return tui.Run(gCtx, d.loop, cell)
		})
	}

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	logger.Info("snapdesk session running",
		slog.Bool("tui", d.interactive),
		slog.String("socket", server.SocketPath()))
	return g.Wait()
}
