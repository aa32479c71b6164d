// Package bus is the cross-domain publish/subscribe channel. A Bus
// fans every published message out to all attached transports; each
// subscription sees a message at most once no matter how many
// transports deliver it.
package bus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"coachdesk/internal/domain/syncbus"
)

// Transport delivers published messages to subscribers in some
// execution context: the in-process fan-out, the durable cross-process
// slot, or anything else that can carry a Message.
type Transport interface {
	// Publish hands the message to the transport for delivery.
	Publish(ctx context.Context, msg syncbus.Message) error
	// Subscribe registers a handler and returns a detach function.
	Subscribe(handler func(syncbus.Message)) (unsubscribe func())
}

// Bus multiplexes domain-change notifications over its transports.
type Bus struct {
	transports []Transport
}

// New creates a Bus over the given transports.
// PRE: at least one transport is provided for the bus to be useful
// POST: Bus is ready for use
func New(transports ...Transport) *Bus {
	return &Bus{transports: transports}
}

// Publish sends a change notification tagged with the affected
// domains. Tags are normalized first; when nothing survives the
// filtering the publish is a no-op.
// PRE: none
// POST: One message with a fresh unique ID was handed to every
// transport, or nothing happened at all
func (b *Bus) Publish(ctx context.Context, domains []string, meta map[string]any) error {
	tags := syncbus.NormalizeDomains(domains)
	if len(tags) == 0 {
		return nil
	}
	msg := syncbus.Message{
		ID:      uuid.NewString(),
		TS:      time.Now(),
		Domains: tags,
		Meta:    meta,
	}
	var firstErr error
	for _, tr := range b.transports {
		if err := tr.Publish(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscribe registers a handler on every transport. The handler is
// invoked at most once per message ID: the last-seen ID is tracked and
// exact repeats dropped, which absorbs the same publish arriving
// through both the in-process and durable paths.
// PRE: handler is non-nil
// POST: Returns an unsubscribe function that detaches from all transports
func (b *Bus) Subscribe(handler func(syncbus.Message)) (unsubscribe func()) {
	var mu sync.Mutex
	lastID := ""

	deduped := func(msg syncbus.Message) {
		mu.Lock()
		if msg.ID == "" || msg.ID == lastID {
			mu.Unlock()
			return
		}
		lastID = msg.ID
		mu.Unlock()
		handler(msg)
	}

	detach := make([]func(), 0, len(b.transports))
	for _, tr := range b.transports {
		detach = append(detach, tr.Subscribe(deduped))
	}
	return func() {
		for _, d := range detach {
			d()
		}
	}
}

// Channel subscribes and exposes the stream as a buffered channel for
// long-lived watcher loops that block on receive. Messages arriving
// while the buffer is full are dropped; watchers reload their whole
// domain per message, so a dropped duplicate costs nothing.
// PRE: buffer > 0
// POST: Returns the channel and an unsubscribe function; the channel
// is never closed by the bus
func (b *Bus) Channel(buffer int) (<-chan syncbus.Message, func()) {
	ch := make(chan syncbus.Message, buffer)
	unsubscribe := b.Subscribe(func(msg syncbus.Message) {
		select {
		case ch <- msg:
		default:
		}
	})
	return ch, unsubscribe
}
