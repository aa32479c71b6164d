package api

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var errEndNotAfterStart = errors.New("end time must be after start time")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the conflict-check payload before it is sent.
// PRE: ConflictCheck struct is populated
// POST: Returns nil if valid, error otherwise
func (c *ConflictCheck) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	// HH:MM strings compare correctly as text.
	if c.EndTime <= c.StartTime {
		return errEndNotAfterStart
	}
	return nil
}

// Validate checks the attendance-open payload before it is sent.
// PRE: AttendanceOpen struct is populated
// POST: Returns nil if valid, error otherwise
func (a *AttendanceOpen) Validate() error {
	return validate.Struct(a)
}
