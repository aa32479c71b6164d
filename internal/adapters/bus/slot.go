package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coachdesk/internal/adapters/storage/state"
	"coachdesk/internal/domain/syncbus"
)

// DefaultSlot is the fixed slot key shared by all coachdesk processes
// on the same state database.
const DefaultSlot = "calendar_sync"

// DefaultPollInterval is how often slot subscribers check for a new
// message ID.
const DefaultPollInterval = 500 * time.Millisecond

// SlotTransport is the durable delivery path: every publish overwrites
// a single row in the shared state database, and subscribers poll the
// row for an ID change. This is how a second process on the same
// machine observes mutations made here, so delivery is "soon", not
// synchronous.
type SlotTransport struct {
	store    state.Store
	slot     string
	interval time.Duration
}

// NewSlotTransport creates a SlotTransport over the given state store.
// PRE: store is backed by an initialized schema
// POST: transport is ready for use
func NewSlotTransport(store state.Store, slot string, pollInterval time.Duration) *SlotTransport {
	if slot == "" {
		slot = DefaultSlot
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &SlotTransport{store: store, slot: slot, interval: pollInterval}
}

// Publish overwrites the durable slot with the message.
// PRE: msg passed Validate()
// POST: slot holds msg; other processes pick it up on their next poll
func (t *SlotTransport) Publish(ctx context.Context, msg syncbus.Message) error {
	return t.store.SaveSlot(ctx, t.slot, msg)
}

// Subscribe starts a poller goroutine that delivers each new message ID
// observed in the slot. The message already in the slot at subscribe
// time is treated as seen, not replayed.
// PRE: handler is non-nil
// POST: Returns an unsubscribe function that stops the poller
func (t *SlotTransport) Subscribe(handler func(syncbus.Message)) func() {
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		ctx := context.Background()

		// Baseline: whatever is in the slot now predates this subscription.
		lastID := ""
		if msg, ok, err := t.store.LoadSlot(ctx, t.slot); err == nil && ok {
			lastID = msg.ID
		}

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				msg, ok, err := t.store.LoadSlot(ctx, t.slot)
				if err != nil {
					slog.Warn("sync_slot_poll_failed", "slot", t.slot, "error", err.Error())
					continue
				}
				if !ok || msg.ID == lastID {
					continue
				}
				lastID = msg.ID
				handler(msg)
			case <-stop:
				return
			}
		}
	}()

	return func() {
		once.Do(func() { close(stop) })
	}
}
