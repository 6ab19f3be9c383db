// Package daemon holds background workers of a running session.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/platform"
	"github.com/1broseidon/snapdesk/internal/session"
)

// DefaultInterval is the screen polling interval when none is configured.
const DefaultInterval = 10 * time.Second

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically re-reads the screen source and moves the session
// to the new bound when the display changes size.
type Reconciler struct {
	interval time.Duration
	source   platform.ScreenSource
	loop     *session.Loop
	logger   *slog.Logger
}

// NewReconciler creates a reconciler applying source to loop.
func NewReconciler(cfg ReconcilerConfig, source platform.ScreenSource, loop *session.Loop) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval: interval,
		source:   source,
		loop:     loop,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started",
		slog.String("source", r.source.Name()),
		slog.Duration("interval", r.interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

// reconcile performs a single reconciliation pass. It reports whether the
// session screen changed.
func (r *Reconciler) reconcile(ctx context.Context) (changed bool) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", slog.Any("error", err))
			changed = false
		}
	}()

	screen, err := r.source.Screen()
	if err != nil {
		r.logger.Warn("reconciler: failed to read screen", slog.String("error", err.Error()))
		return false
	}
	if screen.Width <= 0 || screen.Height <= screen.Taskbar {
		r.logger.Warn("reconciler: ignoring unusable screen",
			slog.Int("width", screen.Width),
			slog.Int("height", screen.Height))
		return false
	}

	var from geometry.Screen
	err = r.loop.Do(ctx, func(d *session.Desktop) error {
		from = d.Settings().Manager.Screen
		if from == screen {
			return nil
		}
		changed = true
		d.SetScreen(screen)
		return nil
	})
	if err != nil {
		r.logger.Warn("reconciler: failed to apply screen", slog.String("error", err.Error()))
		return false
	}
	if changed {
		r.logger.Info("reconciler: screen changed",
			slog.String("from", from.Usable().String()),
			slog.String("to", screen.Usable().String()))
	}
	return changed
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) bool {
	return r.reconcile(ctx)
}
