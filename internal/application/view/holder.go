// Package view holds the UI-facing calendar state. Loaders and
// watchers all write through one Holder so that every write merges
// into the latest snapshot, never a stale copy captured before an I/O
// suspension.
package view

import (
	"sync"
	"time"

	"coachdesk/internal/adapters/api"
	"coachdesk/internal/domain/batch"
	"coachdesk/internal/domain/prefs"
	"coachdesk/internal/domain/schedule"
)

// Snapshot is the complete presentation state of the calendar view.
type Snapshot struct {
	Events      []schedule.Event
	Catalog     batch.Catalog
	Holidays    []api.Holiday
	Preferences prefs.Preferences
	Analytics   map[string]api.DayStats // keyed by YYYY-MM-DD

	Anchor time.Time
	View   string

	Loading  bool
	ErrMsg   string // set only when the schedule fetch itself failed
	LoadedAt time.Time
}

// Holder serializes all writes to the calendar snapshot and signals
// changes to whoever renders it.
type Holder struct {
	mu      sync.Mutex
	snap    Snapshot
	changed chan struct{}
}

// NewHolder creates a Holder with default preferences applied.
func NewHolder() *Holder {
	return &Holder{
		snap:    Snapshot{Preferences: prefs.Defaults(), View: schedule.ViewWeek},
		changed: make(chan struct{}, 1),
	}
}

// Update applies a mutation to the latest snapshot and signals the
// change. The apply function must not block.
// PRE: apply is non-nil
// POST: mutation applied atomically; change signal pending
func (h *Holder) Update(apply func(*Snapshot)) {
	h.mu.Lock()
	apply(&h.snap)
	h.mu.Unlock()

	select {
	case h.changed <- struct{}{}:
	default: // a signal is already pending
	}
}

// Snapshot returns a copy of the current state.
// PRE: none
// POST: returned value is safe to read without synchronization
func (h *Holder) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

// Changed exposes the change signal. At most one notification is
// pending at a time; consumers re-read Snapshot on each receive.
func (h *Holder) Changed() <-chan struct{} {
	return h.changed
}
