package session

import (
	"context"
	"errors"
)

// ErrStopped is returned by Do after the loop has exited.
var ErrStopped = errors.New("session loop stopped")

type request struct {
	fn    func(*Desktop) error
	reply chan error
}

// Loop owns a Desktop on a single goroutine. Every caller, whether the IPC
// server, the terminal front-end or the config watcher, goes through Do.
type Loop struct {
	desk    *Desktop
	reqs    chan request
	changes chan struct{}
	done    chan struct{}
}

// NewLoop wraps d. Nothing may use d directly once Run has started.
func NewLoop(d *Desktop) *Loop {
	l := &Loop{
		desk:    d,
		reqs:    make(chan request),
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	d.OnChange(l.signal)
	return l
}

// signal coalesces change notifications; a pending one is enough.
func (l *Loop) signal() {
	select {
	case l.changes <- struct{}{}:
	default:
	}
}

// Changes delivers a value after one or more desktop changes.
func (l *Loop) Changes() <-chan struct{} { return l.changes }

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Run serves requests until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-l.reqs:
			req.reply <- l.call(req.fn)
		}
	}
}

func (l *Loop) call(fn func(*Desktop) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(l.desk)
}

// Do runs fn on the loop goroutine and returns its error.
func (l *Loop) Do(ctx context.Context, fn func(*Desktop) error) error {
	req := request{fn: fn, reply: make(chan error, 1)}
	select {
	case l.reqs <- req:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot is a convenience wrapper around Do.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := l.Do(ctx, func(d *Desktop) error {
		snap = d.Snapshot()
		return nil
	})
	return snap, err
}
