// Package bus is a synchronous named-topic publish/subscribe registry.
//
// Topics form a closed set fixed when the bus is built. Handlers run in
// registration order on the caller's goroutine; one failing handler never
// stops the others.
package bus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Channel groups related events.
type Channel string

// Event names a message on a channel.
type Event string

const (
	// ChannelWindow carries window lifecycle requests.
	ChannelWindow Channel = "window"

	// EventCreateWindow asks the window manager to open a window. The
	// payload is the content tag string.
	EventCreateWindow Event = "createWindow"
)

// Topic is a channel/event pair.
type Topic struct {
	Channel Channel
	Event   Event
}

func (t Topic) String() string {
	return fmt.Sprintf("%s/%s", t.Channel, t.Event)
}

// CreateWindow is the topic launchers publish on.
var CreateWindow = Topic{Channel: ChannelWindow, Event: EventCreateWindow}

// DefaultTopics lists the topics used by the desktop.
var DefaultTopics = []Topic{CreateWindow}

// ErrUnknownTopic is returned when a topic was not registered at construction.
var ErrUnknownTopic = errors.New("unknown bus topic")

// Handler is a subscriber. Handlers are compared by pointer, so subscribing
// the same *Handler twice registers it once.
type Handler struct {
	name string
	fn   func(payload any) error
}

// NewHandler wraps fn as a subscriber. name is used in log output.
func NewHandler(name string, fn func(payload any) error) *Handler {
	return &Handler{name: name, fn: fn}
}

// Name returns the handler's log name.
func (h *Handler) Name() string { return h.name }

// Bus routes payloads from emitters to handlers.
type Bus struct {
	mu     sync.Mutex
	known  map[Topic]struct{}
	pools  map[Channel]map[Event][]*Handler
	logger *slog.Logger
}

// New builds a bus that accepts only the given topics. A nil logger
// discards handler failures.
func New(logger *slog.Logger, topics ...Topic) *Bus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	known := make(map[Topic]struct{}, len(topics))
	for _, t := range topics {
		known[t] = struct{}{}
	}
	return &Bus{
		known:  known,
		pools:  make(map[Channel]map[Event][]*Handler),
		logger: logger,
	}
}

func (b *Bus) check(t Topic) error {
	if _, ok := b.known[t]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTopic, t)
	}
	return nil
}

// Subscribe registers h on topic t and returns a function that removes it.
func (b *Bus) Subscribe(t Topic, h *Handler) (func(), error) {
	if h == nil {
		return nil, errors.New("bus: nil handler")
	}
	if err := b.check(t); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.pools[t.Channel]
	if events == nil {
		events = make(map[Event][]*Handler)
		b.pools[t.Channel] = events
	}
	subscribed := false
	for _, existing := range events[t.Event] {
		if existing == h {
			subscribed = true
			break
		}
	}
	if !subscribed {
		events[t.Event] = append(events[t.Event], h)
	}

	return func() { b.Unsubscribe(t, h) }, nil
}

// Unsubscribe removes h from topic t. Removing an unknown handler is a no-op.
func (b *Bus) Unsubscribe(t Topic, h *Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := b.pools[t.Channel]
	if events == nil {
		return
	}
	handlers := events[t.Event]
	for i, existing := range handlers {
		if existing == h {
			events[t.Event] = append(handlers[:i:i], handlers[i+1:]...)
			return
		}
	}
}

// Clear drops every subscription on channel c.
func (b *Bus) Clear(c Channel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pools, c)
}

// Subscribers returns the number of handlers on topic t.
func (b *Bus) Subscribers(t Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pools[t.Channel][t.Event])
}

// Emit delivers payload to every handler on t, in registration order.
// Handler errors and panics are logged and do not reach the caller.
func (b *Bus) Emit(t Topic, payload any) error {
	if err := b.check(t); err != nil {
		return err
	}

	b.mu.Lock()
	handlers := append([]*Handler(nil), b.pools[t.Channel][t.Event]...)
	b.mu.Unlock()

	for _, h := range handlers {
		if err := b.deliver(h, payload); err != nil {
			b.logger.Error("bus handler failed",
				slog.String("topic", t.String()),
				slog.String("handler", h.name),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func (b *Bus) deliver(h *Handler, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.fn(payload)
}
