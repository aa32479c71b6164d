package batch

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyID   = errors.New("batch ID cannot be empty")
	ErrEmptyName = errors.New("batch name cannot be empty")
)

// Batch is one teaching group in the center's catalog.
type Batch struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject,omitempty"`
}

// Validate checks if the Batch has valid data.
// PRE: Batch struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Batch) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Catalog is the full batch list, independent of any visible date
// range. It is hydrated once and reused across range changes unless a
// forced refresh is requested or the list is empty.
type Catalog []Batch

// IsEmpty reports whether the catalog needs hydration.
func (c Catalog) IsEmpty() bool {
	return len(c) == 0
}

// ByID returns the batch with the given ID, if present.
// PRE: none
// POST: Returns the batch and true, or zero value and false
func (c Catalog) ByID(id string) (Batch, bool) {
	for _, b := range c {
		if b.ID == id {
			return b, true
		}
	}
	return Batch{}, false
}
