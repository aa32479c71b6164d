package override

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Override kind constants.
const (
	KindCancel     = "cancel"     // class does not run on the date
	KindReschedule = "reschedule" // class runs at a different time
	KindExtra      = "extra"      // additional one-off class
)

// Domain errors
var (
	ErrTimesRequired = errors.New("reschedule and extra overrides require start and end times")
	ErrEndNotAfter   = errors.New("override end time must be after start time")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Request is the payload for creating or updating a date-specific
// schedule override. Times are HH:MM in the institute's local time.
type Request struct {
	BatchID   string `json:"batch_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Kind      string `json:"kind" validate:"required,oneof=cancel reschedule extra"`
	StartTime string `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime   string `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	Reason    string `json:"reason,omitempty" validate:"max=500"`
}

// Validate checks the request's invariants.
// PRE: Request struct is populated
// POST: Returns nil if valid, error describing the first violation otherwise
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Kind != KindCancel {
		if r.StartTime == "" || r.EndTime == "" {
			return ErrTimesRequired
		}
		// HH:MM strings compare correctly as text.
		if r.EndTime <= r.StartTime {
			return ErrEndNotAfter
		}
	}
	return nil
}

// Override is a persisted date-specific schedule exception as returned
// by the backend.
type Override struct {
	ID        string `json:"id"`
	BatchID   string `json:"batch_id"`
	Date      string `json:"date"`
	Kind      string `json:"kind"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Reason    string `json:"reason,omitempty"`
}
