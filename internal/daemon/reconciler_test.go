package daemon

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/snapdesk/internal/geometry"
	"github.com/1broseidon/snapdesk/internal/session"
)

type fakeSource struct {
	mu     sync.Mutex
	screen geometry.Screen
	err    error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Screen() (geometry.Screen, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.screen, f.err
}

func (f *fakeSource) set(s geometry.Screen, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screen, f.err = s, err
}

func startLoop(t *testing.T) *session.Loop {
	t.Helper()
	d, err := session.NewDesktop(session.DefaultSettings(), nil, nil)
	if err != nil {
		t.Fatalf("NewDesktop: %v", err)
	}
	loop := session.NewLoop(d)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go loop.Run(ctx)
	return loop
}

func TestReconciler_AppliesChangedScreen(t *testing.T) {
	loop := startLoop(t)
	ctx := context.Background()
	wide := geometry.Screen{Width: 1920, Height: 1080, Taskbar: 40}
	src := &fakeSource{screen: wide}
	r := NewReconciler(ReconcilerConfig{}, src, loop)

	if !r.ReconcileNow(ctx) {
		t.Fatalf("expected first pass to change the screen")
	}
	snap, err := loop.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Screen != wide {
		t.Fatalf("screen = %+v, want %+v", snap.Screen, wide)
	}

	if r.ReconcileNow(ctx) {
		t.Fatalf("unchanged screen reported as changed")
	}
}

func TestReconciler_KeepsScreenOnSourceError(t *testing.T) {
	loop := startLoop(t)
	ctx := context.Background()
	src := &fakeSource{}
	r := NewReconciler(ReconcilerConfig{}, src, loop)

	tests := []struct {
		name   string
		screen geometry.Screen
		err    error
	}{
		{"source error", geometry.Screen{Width: 1920, Height: 1080}, errors.New("display gone")},
		{"zero width", geometry.Screen{Height: 1080}, nil},
		{"taskbar covers screen", geometry.Screen{Width: 800, Height: 40, Taskbar: 40}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src.set(tt.screen, tt.err)
			if r.ReconcileNow(ctx) {
				t.Fatalf("expected no change")
			}
			snap, _ := loop.Snapshot(ctx)
			if snap.Screen.Width != 1280 || snap.Screen.Height != 800 {
				t.Fatalf("screen = %+v", snap.Screen)
			}
		})
	}
}

func TestReconciler_RunPollsUntilCancelled(t *testing.T) {
	loop := startLoop(t)
	src := &fakeSource{screen: geometry.Screen{Width: 1024, Height: 768, Taskbar: 30}}
	r := NewReconciler(ReconcilerConfig{Interval: 10 * time.Millisecond}, src, loop)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := loop.Snapshot(context.Background())
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if snap.Screen.Width == 1024 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("reconciler never applied the screen")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
