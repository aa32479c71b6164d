package bus

import (
	"context"
	"sync"

	"coachdesk/internal/domain/syncbus"
)

// MemoryTransport is the in-process delivery path: synchronous fan-out
// to every handler registered in this process.
type MemoryTransport struct {
	mu       sync.Mutex
	nextID   int
	handlers map[int]func(syncbus.Message)
}

// NewMemoryTransport creates an empty in-process transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{handlers: make(map[int]func(syncbus.Message))}
}

// Publish dispatches the message synchronously to all handlers.
// PRE: msg passed Validate()
// POST: every handler registered at call time was invoked
func (t *MemoryTransport) Publish(_ context.Context, msg syncbus.Message) error {
	t.mu.Lock()
	handlers := make([]func(syncbus.Message), 0, len(t.handlers))
	for _, h := range t.handlers {
		handlers = append(handlers, h)
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

// Subscribe registers a handler.
// PRE: handler is non-nil
// POST: handler receives all future publishes until unsubscribed
func (t *MemoryTransport) Subscribe(handler func(syncbus.Message)) func() {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.handlers[id] = handler
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.handlers, id)
		t.mu.Unlock()
	}
}
