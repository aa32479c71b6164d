package schedule

import (
	"errors"
	"strings"
	"time"
)

// Event status constants.
const (
	StatusCancelled = "cancelled"
	StatusLive      = "live"
	StatusCompleted = "completed"
	StatusUpcoming  = "upcoming"
)

// Color classification constants for event presentation.
const (
	ColorCurrent       = "current"
	ColorPast          = "past"
	ColorTodayUpcoming = "today-upcoming"
	ColorDefault       = "default"
)

// Calendar view granularity constants.
const (
	ViewDay   = "day"
	ViewWeek  = "week"
	ViewMonth = "month"
)

// Domain errors
var (
	ErrEmptyBatchID = errors.New("schedule row batch ID cannot be empty")
	ErrEmptyStart   = errors.New("schedule row start datetime cannot be empty")
	ErrEmptyEnd     = errors.New("schedule row end datetime cannot be empty")
	ErrInvalidView  = errors.New("view must be day, week or month")
)

// Row is a raw schedule entry as returned by the backend. SessionID is
// set only when the slot is backed by a concrete attendance session
// rather than a recurring template.
type Row struct {
	BatchID       string `json:"batch_id"`
	SessionID     string `json:"session_id,omitempty"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
	Status        string `json:"status,omitempty"`
	BatchName     string `json:"batch_name"`
	TeacherID     string `json:"teacher_id,omitempty"`
	Subject       string `json:"subject,omitempty"`
	Room          string `json:"room,omitempty"`
}

// Validate checks if the Row has valid data.
// PRE: Row struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Row) Validate() error {
	if strings.TrimSpace(r.BatchID) == "" {
		return ErrEmptyBatchID
	}
	if strings.TrimSpace(r.StartDateTime) == "" {
		return ErrEmptyStart
	}
	if strings.TrimSpace(r.EndDateTime) == "" {
		return ErrEmptyEnd
	}
	return nil
}

// Event is a presentation-ready calendar entry derived from a Row and a
// reference time. Events are recomputed fresh on every load and never
// mutated after derivation.
type Event struct {
	Row

	UID          string
	Status       string
	IsCurrent    bool
	StartMinutes int // minutes since local midnight, for layout
	TimeLabel    string
	ColorClass   string

	Start time.Time
	End   time.Time
}

// IsValidView reports whether view is a recognized calendar granularity.
// PRE: none
// POST: returns true for day, week or month
func IsValidView(view string) bool {
	return view == ViewDay || view == ViewWeek || view == ViewMonth
}
