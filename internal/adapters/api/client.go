// Package api is the HTTP client for the coaching-center backend. All
// calendar-engine network traffic goes through this adapter so that
// error normalization and cache-bypass handling stay in one place.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"coachdesk/internal/domain/batch"
	"coachdesk/internal/domain/override"
	"coachdesk/internal/domain/schedule"
)

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 30 * time.Second

// dateFormat is the wire format for range boundaries.
const dateFormat = "2006-01-02"

// Client talks to the dashboard REST backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a Client for the given base URL. A nil httpClient
// falls back to one with DefaultTimeout.
// PRE: baseURL is non-empty
// POST: Client is ready for use
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// CalendarQuery selects a schedule window.
type CalendarQuery struct {
	Start       time.Time
	End         time.Time
	View        string
	TeacherID   string // empty means no teacher filter
	BypassCache bool
}

// CalendarWindow is the schedule payload for one date range.
// Preferences is left raw because the backend returns it either as an
// object or as a string; prefs.Parse absorbs both.
type CalendarWindow struct {
	Items       []schedule.Row  `json:"items"`
	Holidays    []Holiday       `json:"holidays"`
	Preferences json.RawMessage `json:"preferences"`
}

// Holiday is one imported public holiday.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// FetchCalendar loads the schedule window for a date range and view.
// PRE: q.Start and q.End are set, q.View is a valid granularity
// POST: Returns the window, or a normalized error
func (c *Client) FetchCalendar(ctx context.Context, q CalendarQuery) (CalendarWindow, error) {
	query := url.Values{}
	query.Set("start", q.Start.Format(dateFormat))
	query.Set("end", q.End.Format(dateFormat))
	query.Set("view", q.View)
	if q.TeacherID != "" {
		query.Set("teacher_id", q.TeacherID)
	}
	if q.BypassCache {
		query.Set("bypass_cache", "1")
	}

	var window CalendarWindow
	if err := c.get(ctx, "calendar", query, &window); err != nil {
		return CalendarWindow{}, err
	}
	return window, nil
}

// DayStats is the per-day aggregate counts for one date. The count
// keys are open vocabulary (classes, students_expected, ...), so
// everything except the date lands in Counts.
type DayStats struct {
	Date   string
	Counts map[string]int
}

// UnmarshalJSON splits the fixed date field from the free-form counts.
func (d *DayStats) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Counts = make(map[string]int, len(raw))
	for key, val := range raw {
		if key == "date" {
			if err := json.Unmarshal(val, &d.Date); err != nil {
				return err
			}
			continue
		}
		var n int
		if err := json.Unmarshal(val, &n); err != nil {
			continue // non-numeric extras are ignored
		}
		d.Counts[key] = n
	}
	return nil
}

// FetchAnalytics loads per-day summary counts for a date range.
// PRE: q.Start and q.End are set
// POST: Returns one DayStats per day present in the response
func (c *Client) FetchAnalytics(ctx context.Context, q CalendarQuery) ([]DayStats, error) {
	query := url.Values{}
	query.Set("start", q.Start.Format(dateFormat))
	query.Set("end", q.End.Format(dateFormat))
	if q.TeacherID != "" {
		query.Set("teacher_id", q.TeacherID)
	}
	if q.BypassCache {
		query.Set("bypass_cache", "1")
	}

	var payload struct {
		Days []DayStats `json:"days"`
	}
	if err := c.get(ctx, "calendar/analytics", query, &payload); err != nil {
		return nil, err
	}
	return payload.Days, nil
}

// GetSession fetches the detail object for one attendance session.
// PRE: sessionID is non-empty
// POST: Returns the detail map, or nil with no error when not found
func (c *Client) GetSession(ctx context.Context, sessionID string) (map[string]any, error) {
	var detail map[string]any
	err := c.get(ctx, "calendar/session/"+url.PathEscape(sessionID), nil, &detail)
	if err != nil {
		var apiErr *Error
		if asError(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return detail, nil
}

// SyncHolidays triggers a server-side public-holiday import.
// PRE: startYear > 0, years >= 1
// POST: Import requested; the server performs the actual fetch
func (c *Client) SyncHolidays(ctx context.Context, startYear, years int, countryCode string) error {
	query := url.Values{}
	query.Set("start_year", fmt.Sprintf("%d", startYear))
	query.Set("years", fmt.Sprintf("%d", years))
	query.Set("country_code", countryCode)
	return c.do(ctx, http.MethodPost, "calendar/holidays/sync", query, nil, nil)
}

// CreateOverride creates a date-specific schedule override.
// PRE: req passed Validate()
// POST: Returns the created override
func (c *Client) CreateOverride(ctx context.Context, req override.Request) (override.Override, error) {
	var out override.Override
	if err := c.do(ctx, http.MethodPost, "calendar/override", nil, req, &out); err != nil {
		return override.Override{}, err
	}
	return out, nil
}

// UpdateOverride updates an existing override.
// PRE: id is non-empty, req passed Validate()
// POST: Returns the updated override
func (c *Client) UpdateOverride(ctx context.Context, id string, req override.Request) (override.Override, error) {
	var out override.Override
	if err := c.do(ctx, http.MethodPut, "calendar/override/"+url.PathEscape(id), nil, req, &out); err != nil {
		return override.Override{}, err
	}
	return out, nil
}

// DeleteOverride removes an override.
// PRE: id is non-empty
// POST: Override no longer exists on the backend
func (c *Client) DeleteOverride(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "calendar/override/"+url.PathEscape(id), nil, nil, nil)
}

// ConflictCheck is a proposed schedule change to validate.
type ConflictCheck struct {
	BatchID          string `json:"batch_id" validate:"required"`
	Date             string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime        string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime          string `json:"end_time" validate:"required,datetime=15:04"`
	ExcludeSessionID string `json:"exclude_session_id,omitempty"`
}

// ConflictResult is the backend's verdict on a proposed change.
type ConflictResult struct {
	HasConflict bool     `json:"has_conflict"`
	Conflicts   []string `json:"conflicts,omitempty"`
}

// ValidateConflicts asks the backend whether a proposed change clashes
// with existing schedule entries.
// PRE: check passed validation
// POST: Returns the validation result; performs no mutation
func (c *Client) ValidateConflicts(ctx context.Context, check ConflictCheck) (ConflictResult, error) {
	var out ConflictResult
	if err := c.do(ctx, http.MethodPost, "calendar/conflicts/validate", nil, check, &out); err != nil {
		return ConflictResult{}, err
	}
	return out, nil
}

// AttendanceOpen requests an attendance session for a class slot.
type AttendanceOpen struct {
	BatchID string `json:"batch_id" validate:"required"`
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
}

// OpenAttendance opens (or reuses) an attendance session for a class.
// PRE: req passed validation
// POST: Returns the session ID to navigate to
func (c *Client) OpenAttendance(ctx context.Context, req AttendanceOpen) (string, error) {
	var out struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "attendance/manage/open", nil, req, &out); err != nil {
		return "", err
	}
	return out.SessionID, nil
}

// ListBatches fetches the flat batch catalog.
// PRE: none
// POST: Returns the catalog; callers treat failure as an empty list
func (c *Client) ListBatches(ctx context.Context) (batch.Catalog, error) {
	var batches batch.Catalog
	if err := c.get(ctx, "batches", nil, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
