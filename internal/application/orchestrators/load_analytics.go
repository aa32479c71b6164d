package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"coachdesk/internal/adapters/api"
	"coachdesk/internal/application/view"
)

// AnalyticsAPI is the backend slice the analytics loader needs.
type AnalyticsAPI interface {
	FetchAnalytics(ctx context.Context, q api.CalendarQuery) ([]api.DayStats, error)
}

// LoadAnalyticsInput selects the range to aggregate.
type LoadAnalyticsInput struct {
	Start       time.Time
	End         time.Time
	TeacherID   string
	BypassCache bool // set on watcher-triggered reloads
}

// LoadAnalyticsDeps holds dependencies for the analytics load.
type LoadAnalyticsDeps struct {
	API    AnalyticsAPI
	Holder *view.Holder // optional: nil skips the state publish
}

// ExecuteLoadAnalytics fetches per-day aggregate counts for the range
// and builds a lookup keyed by date string. Analytics are
// supplementary: any failure yields an empty lookup and no error ever
// reaches the caller or the view state.
// PRE: Start and End are set
// POST: Returns the lookup; empty on failure
func ExecuteLoadAnalytics(ctx context.Context, input LoadAnalyticsInput, deps LoadAnalyticsDeps) map[string]api.DayStats {
	lookup := map[string]api.DayStats{}

	days, err := deps.API.FetchAnalytics(ctx, api.CalendarQuery{
		Start:       input.Start,
		End:         input.End,
		TeacherID:   input.TeacherID,
		BypassCache: input.BypassCache,
	})
	if err != nil {
		slog.Warn("calendar_analytics_failed", "start", input.Start.Format("2006-01-02"), "error", api.Message(err))
	} else {
		for _, day := range days {
			if day.Date == "" {
				continue
			}
			lookup[day.Date] = day
		}
	}

	if deps.Holder != nil {
		deps.Holder.Update(func(s *view.Snapshot) {
			s.Analytics = lookup
		})
	}
	return lookup
}
