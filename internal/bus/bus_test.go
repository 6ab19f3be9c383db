package bus

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestSubscribe_SameHandlerTwiceDeliversOnce(t *testing.T) {
	b := New(nil, DefaultTopics...)
	calls := 0
	h := NewHandler("counter", func(any) error {
		calls++
		return nil
	})

	if _, err := b.Subscribe(CreateWindow, h); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if _, err := b.Subscribe(CreateWindow, h); err != nil {
		t.Fatalf("subscribe again: %v", err)
	}
	if err := b.Emit(CreateWindow, "text"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestEmit_RegistrationOrderAndIsolation(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	b := New(logger, DefaultTopics...)

	var order []string
	record := func(name string, fail error, boom bool) *Handler {
		return NewHandler(name, func(payload any) error {
			order = append(order, name+":"+payload.(string))
			if boom {
				panic("boom")
			}
			return fail
		})
	}

	for _, h := range []*Handler{
		record("first", nil, false),
		record("erroring", errors.New("bad payload"), false),
		record("panicking", nil, true),
		record("last", nil, false),
	} {
		if _, err := b.Subscribe(CreateWindow, h); err != nil {
			t.Fatalf("subscribe %s: %v", h.Name(), err)
		}
	}

	if err := b.Emit(CreateWindow, "x"); err != nil {
		t.Fatalf("emit: %v", err)
	}
	want := "first:x,erroring:x,panicking:x,last:x"
	if got := strings.Join(order, ","); got != want {
		t.Fatalf("order = %s, want %s", got, want)
	}
	if !strings.Contains(logs.String(), "handler=erroring") || !strings.Contains(logs.String(), "handler=panicking") {
		t.Fatalf("expected failures logged, got %q", logs.String())
	}
}

func TestUnsubscribeAndClear(t *testing.T) {
	b := New(nil, DefaultTopics...)
	calls := 0
	h := NewHandler("h", func(any) error { calls++; return nil })

	unsubscribe, err := b.Subscribe(CreateWindow, h)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	unsubscribe()
	unsubscribe()
	_ = b.Emit(CreateWindow, "text")
	if calls != 0 {
		t.Fatalf("calls = %d after unsubscribe", calls)
	}

	if _, err := b.Subscribe(CreateWindow, h); err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	b.Clear(ChannelWindow)
	if n := b.Subscribers(CreateWindow); n != 0 {
		t.Fatalf("subscribers = %d after clear", n)
	}
	_ = b.Emit(CreateWindow, "text")
	if calls != 0 {
		t.Fatalf("calls = %d after clear", calls)
	}
}

func TestUnknownTopic(t *testing.T) {
	b := New(nil, DefaultTopics...)
	other := Topic{Channel: "desktop", Event: "wallpaper"}

	if _, err := b.Subscribe(other, NewHandler("h", func(any) error { return nil })); !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("subscribe err = %v, want ErrUnknownTopic", err)
	}
	if err := b.Emit(other, nil); !errors.Is(err, ErrUnknownTopic) {
		t.Fatalf("emit err = %v, want ErrUnknownTopic", err)
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	b := New(nil, DefaultTopics...)
	var second *Handler
	calls := 0
	first := NewHandler("first", func(any) error {
		b.Unsubscribe(CreateWindow, second)
		return nil
	})
	second = NewHandler("second", func(any) error { calls++; return nil })
	_, _ = b.Subscribe(CreateWindow, first)
	_, _ = b.Subscribe(CreateWindow, second)

	_ = b.Emit(CreateWindow, "text")
	if calls != 1 {
		t.Fatalf("expected snapshot delivery to reach second once, got %d", calls)
	}
	_ = b.Emit(CreateWindow, "text")
	if calls != 1 {
		t.Fatalf("expected second removed, got %d calls", calls)
	}
}
