package schedule

import (
	"time"
)

// clockFormat is the short time format used in event labels.
const clockFormat = "15:04"

// scheduleTimeLayouts are tried in order when parsing a schedule
// timestamp. Layouts carrying an explicit offset or UTC marker come
// first and are interpreted literally; the remaining layouts read the
// components as local wall-clock time, since schedule data is authored
// in the institute's local time.
var offsetLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseScheduleTime parses a schedule timestamp using the single rule
// applied everywhere schedule data is ingested: explicit offsets are
// honored, otherwise the components are local wall-clock time.
// PRE: s is non-empty
// POST: Returns the parsed time, or an error if no layout matches
func ParseScheduleTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range offsetLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Derive turns raw schedule rows into presentation-ready events,
// preserving input order. Rows whose timestamps cannot be parsed are
// dropped. The reference time is passed in, never read internally, so
// derivation stays deterministic.
// PRE: now is the reference wall-clock time
// POST: Returns one Event per parseable Row, in original order
// INVARIANT: Each Event's UID is unique within the returned set
func Derive(rows []Row, now time.Time) []Event {
	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		start, err := ParseScheduleTime(row.StartDateTime)
		if err != nil {
			continue
		}
		end, err := ParseScheduleTime(row.EndDateTime)
		if err != nil {
			continue
		}

		isCurrent := !start.After(now) && now.Before(end)
		isPast := !end.After(now)
		isUpcomingToday := sameCalendarDay(start, now) && start.After(now)

		events = append(events, Event{
			Row:          row,
			UID:          EventUID(row),
			Status:       deriveStatus(row.Status, isCurrent, isPast),
			IsCurrent:    isCurrent,
			StartMinutes: start.Hour()*60 + start.Minute(),
			TimeLabel:    start.Format(clockFormat) + " - " + end.Format(clockFormat),
			ColorClass:   deriveColor(isCurrent, isPast, isUpcomingToday),
			Start:        start,
			End:          end,
		})
	}
	return events
}

// EventUID returns the stable identity key for a schedule row:
// session-<session_id> when the row is backed by a concrete session,
// else batch-<batch_id>-<start_datetime>.
// PRE: row has BatchID and StartDateTime set
// POST: Returns the same UID for the same row on every call
func EventUID(row Row) string {
	if row.SessionID != "" {
		return "session-" + row.SessionID
	}
	return "batch-" + row.BatchID + "-" + row.StartDateTime
}

func deriveStatus(source string, isCurrent, isPast bool) string {
	if source == StatusCancelled {
		return StatusCancelled
	}
	if isCurrent {
		return StatusLive
	}
	if isPast {
		return StatusCompleted
	}
	return StatusUpcoming
}

func deriveColor(isCurrent, isPast, isUpcomingToday bool) string {
	if isCurrent {
		return ColorCurrent
	}
	if isPast {
		return ColorPast
	}
	if isUpcomingToday {
		return ColorTodayUpcoming
	}
	return ColorDefault
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// RangeForView returns the date range implied by an anchor date and a
// view granularity. Weeks run Monday through Sunday.
// PRE: view is day, week or month
// POST: Returns midnight-aligned start and end (inclusive) dates
func RangeForView(anchor time.Time, view string) (time.Time, time.Time, error) {
	day := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	switch view {
	case ViewDay:
		return day, day, nil
	case ViewWeek:
		// Weekday is Sunday-based; shift so Monday starts the week.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 6), nil
	case ViewMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start, start.AddDate(0, 1, -1), nil
	default:
		return time.Time{}, time.Time{}, ErrInvalidView
	}
}
