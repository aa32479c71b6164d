package orchestrators

import (
	"context"

	"coachdesk/internal/domain/syncbus"
)

// CalendarInterest is the set of domain tags whose mutations require a
// calendar reload.
var CalendarInterest = []string{
	syncbus.DomainCalendar,
	syncbus.DomainTimeCapacity,
	syncbus.DomainBatches,
}

// WatchCalendarDeps holds dependencies for the calendar watcher.
type WatchCalendarDeps struct {
	Bus       MessageSource
	Load      LoadCalendarDeps
	TeacherID string
}

// StartCalendarWatcher subscribes the calendar view to the sync bus for
// its whole mounted lifetime. Every matching message re-runs the load
// in silent mode: the range is recomputed from whatever anchor and view
// are active at that moment, no loading state is shown, and server
// caches are bypassed so the view self-heals after a mutation made
// elsewhere.
// PRE: deps.Load is fully wired
// POST: watcher runs until stopCh is closed
func StartCalendarWatcher(deps WatchCalendarDeps, stopCh <-chan struct{}) {
	StartDomainWatcher(DomainWatcherDeps{
		Bus:      deps.Bus,
		Interest: CalendarInterest,
		Name:     "calendar",
		Reload: func(ctx context.Context) error {
			snap := deps.Load.Holder.Snapshot()
			return ExecuteLoadCalendar(ctx, LoadCalendarInput{
				Anchor:    snap.Anchor,
				View:      snap.View,
				TeacherID: deps.TeacherID,
				Silent:    true,
			}, deps.Load)
		},
	}, stopCh)
}
