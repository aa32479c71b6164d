package syncbus

import (
	"errors"
	"strings"
	"time"
)

// Well-known domain tags. The vocabulary is open: consumers match by
// set intersection, so unknown tags flow through untouched.
const (
	DomainCalendar     = "calendar"
	DomainBatches      = "batches"
	DomainTimeCapacity = "time_capacity"
	DomainStudents     = "students"
	DomainAttendance   = "attendance"
)

// Domain errors
var (
	ErrEmptyID      = errors.New("sync message ID cannot be empty")
	ErrEmptyDomains = errors.New("sync message must carry at least one domain tag")
)

// Message is a cross-domain change notification. ID is unique per
// publish; a consumer that has already processed an ID must ignore any
// later delivery of the same ID.
type Message struct {
	ID      string         `json:"id"`
	TS      time.Time      `json:"ts"`
	Domains []string       `json:"domains"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Validate checks that the Message has valid data.
// PRE: Message struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Message) Validate() error {
	if m.ID == "" {
		return ErrEmptyID
	}
	if len(m.Domains) == 0 {
		return ErrEmptyDomains
	}
	return nil
}

// Matches reports whether the message's domain tags intersect the
// given interest set.
// PRE: none
// INVARIANT: Message fields are not mutated
func (m Message) Matches(interest []string) bool {
	for _, tag := range m.Domains {
		for _, want := range interest {
			if tag == want {
				return true
			}
		}
	}
	return false
}

// NormalizeDomains lowercases, trims, blank-filters and deduplicates a
// tag list, preserving first-seen order.
// PRE: none
// POST: Returns the cleaned list; empty slice when nothing survives
func NormalizeDomains(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
