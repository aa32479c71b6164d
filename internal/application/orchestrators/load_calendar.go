package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"coachdesk/internal/adapters/api"
	"coachdesk/internal/application/view"
	"coachdesk/internal/domain/batch"
	"coachdesk/internal/domain/prefs"
	"coachdesk/internal/domain/schedule"
)

// CalendarAPI is the backend slice the loader needs.
type CalendarAPI interface {
	FetchCalendar(ctx context.Context, q api.CalendarQuery) (api.CalendarWindow, error)
	ListBatches(ctx context.Context) (batch.Catalog, error)
}

// HolidayRunner is the fire-and-forget holiday throttle check.
type HolidayRunner interface {
	MaybeRun(ctx context.Context)
}

// PreferencesState persists the latest preferences blob between runs.
type PreferencesState interface {
	SavePreferencesRaw(ctx context.Context, raw string) error
}

// LoadCalendarInput selects what to load and how.
type LoadCalendarInput struct {
	Anchor    time.Time
	View      string
	TeacherID string
	Force     bool // re-hydrate the catalog and bypass server caches
	Silent    bool // no visible loading state, but still bypass caches
}

// LoadCalendarDeps holds dependencies for the calendar load.
type LoadCalendarDeps struct {
	API      CalendarAPI
	Holder   *view.Holder
	Holidays HolidayRunner    // optional: nil skips the background import check
	Prefs    PreferencesState // optional: nil skips preferences persistence
	Now      func() time.Time // optional: nil means time.Now
}

// ExecuteLoadCalendar loads the schedule window for the anchor date
// and view, derives presentation events, and publishes them to the
// view state. Events become visible before catalog hydration starts;
// a catalog failure degrades to an empty catalog while a schedule
// failure fails the whole load.
// PRE: input.View is a valid granularity
// POST: Holder shows fresh events, or the load's error message
func ExecuteLoadCalendar(ctx context.Context, input LoadCalendarInput, deps LoadCalendarDeps) error {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	anchor := input.Anchor
	if anchor.IsZero() {
		anchor = now()
	}
	start, end, err := schedule.RangeForView(anchor, input.View)
	if err != nil {
		return err
	}

	needCatalog := input.Force || deps.Holder.Snapshot().Catalog.IsEmpty()

	if !input.Silent {
		deps.Holder.Update(func(s *view.Snapshot) {
			s.Loading = true
			s.ErrMsg = ""
		})
	}

	// Independent of the schedule fetch; must not delay it.
	if deps.Holidays != nil {
		go deps.Holidays.MaybeRun(ctx)
	}

	window, err := deps.API.FetchCalendar(ctx, api.CalendarQuery{
		Start:       start,
		End:         end,
		View:        input.View,
		TeacherID:   input.TeacherID,
		BypassCache: input.Force || input.Silent,
	})
	if err != nil {
		msg := api.Message(err)
		deps.Holder.Update(func(s *view.Snapshot) {
			s.Loading = false
			s.ErrMsg = msg
		})
		slog.Error("calendar_load_failed", "view", input.View, "start", start.Format("2006-01-02"), "error", msg)
		return err
	}

	events := schedule.Derive(window.Items, now())
	preferences := parsePreferences(window.Preferences)

	deps.Holder.Update(func(s *view.Snapshot) {
		s.Events = events
		s.Holidays = window.Holidays
		s.Preferences = preferences
		s.Anchor = anchor
		s.View = input.View
		s.Loading = false
		s.ErrMsg = ""
		s.LoadedAt = now()
	})
	slog.Info("calendar_loaded", "view", input.View, "start", start.Format("2006-01-02"), "events", len(events), "silent", input.Silent)

	if deps.Prefs != nil && len(window.Preferences) > 0 {
		if err := deps.Prefs.SavePreferencesRaw(ctx, string(window.Preferences)); err != nil {
			slog.Warn("preferences_persist_failed", "error", err.Error())
		}
	}

	// Catalog hydration runs strictly after the events are visible.
	if needCatalog {
		catalog, err := deps.API.ListBatches(ctx)
		if err != nil {
			slog.Warn("batch_catalog_load_failed", "error", api.Message(err))
			catalog = batch.Catalog{}
		}
		deps.Holder.Update(func(s *view.Snapshot) {
			s.Catalog = catalog
		})
	}

	return nil
}

// parsePreferences absorbs the preferences field's two wire shapes:
// a JSON object, or a JSON string holding one.
func parsePreferences(raw json.RawMessage) prefs.Preferences {
	if len(raw) == 0 {
		return prefs.Defaults()
	}
	return prefs.Parse([]byte(raw))
}
