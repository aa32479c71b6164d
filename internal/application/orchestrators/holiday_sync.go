package orchestrators

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HolidaySyncTTL is the throttle window: the background holiday import
// runs at most once per window regardless of how often the calendar is
// loaded.
const HolidaySyncTTL = 7 * 24 * time.Hour

// holidayImportTimeout bounds the background import request.
const holidayImportTimeout = 2 * time.Minute

// HolidayImporter triggers the server-side holiday import.
type HolidayImporter interface {
	SyncHolidays(ctx context.Context, startYear, years int, countryCode string) error
}

// HolidaySyncState is the persisted-timestamp slice of the state store.
type HolidaySyncState interface {
	HolidayLastSync(ctx context.Context) (time.Time, bool, error)
	SetHolidayLastSync(ctx context.Context, at time.Time) error
}

// HolidayThrottle gates the background holiday import behind a
// persisted timestamp and an in-process attempted flag. The flag is
// set even when the import fails, so a failing endpoint is hit at most
// once per process lifetime; the TTL was never satisfied, so the next
// process simply retries.
type HolidayThrottle struct {
	state       HolidaySyncState
	importer    HolidayImporter
	countryCode string
	ttl         time.Duration

	mu        sync.Mutex
	attempted bool
	inflight  sync.WaitGroup
}

// NewHolidayThrottle creates a throttle with the standard TTL.
// PRE: state and importer are non-nil, countryCode is non-empty
// POST: throttle is ready; no import has been attempted
func NewHolidayThrottle(state HolidaySyncState, importer HolidayImporter, countryCode string) *HolidayThrottle {
	return &HolidayThrottle{
		state:       state,
		importer:    importer,
		countryCode: countryCode,
		ttl:         HolidaySyncTTL,
	}
}

// MaybeRun checks whether a holiday import is due and, if so, starts
// one in the background. Never blocks on network I/O and never
// surfaces an error: holiday data is best-effort enrichment.
// PRE: none
// POST: at most one import is ever started per throttle instance
func (t *HolidayThrottle) MaybeRun(ctx context.Context) {
	t.mu.Lock()
	if t.attempted {
		t.mu.Unlock()
		return
	}

	last, ok, err := t.state.HolidayLastSync(ctx)
	if err != nil {
		// Cannot read the gate; skip quietly rather than risk hammering.
		t.attempted = true
		t.mu.Unlock()
		slog.Warn("holiday_sync_state_read_failed", "error", err.Error())
		return
	}
	if ok && time.Since(last) < t.ttl {
		t.attempted = true
		t.mu.Unlock()
		return
	}

	// Flag before forking so a near-simultaneous caller cannot also
	// start an import.
	t.attempted = true
	t.mu.Unlock()

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.runImport()
	}()
}

func (t *HolidayThrottle) runImport() {
	ctx, cancel := context.WithTimeout(context.Background(), holidayImportTimeout)
	defer cancel()

	year := time.Now().Year()
	if err := t.importer.SyncHolidays(ctx, year, 1, t.countryCode); err != nil {
		// Silent by design: the timestamp stays unset so the next
		// eligible load retries.
		slog.Warn("holiday_sync_failed", "year", year, "country", t.countryCode, "error", err.Error())
		return
	}
	if err := t.state.SetHolidayLastSync(ctx, time.Now()); err != nil {
		slog.Warn("holiday_sync_persist_failed", "error", err.Error())
		return
	}
	slog.Info("holiday_sync_completed", "year", year, "country", t.countryCode)
}

// Wait blocks until any in-flight import finishes. Used by shutdown
// paths and tests.
func (t *HolidayThrottle) Wait() {
	t.inflight.Wait()
}
