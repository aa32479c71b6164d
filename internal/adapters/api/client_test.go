package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"coachdesk/internal/adapters/api"
	"coachdesk/internal/domain/override"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return api.NewClient(server.URL, "test-token", server.Client())
}

// TestFetchCalendar tests the schedule-window request and response decoding.
func TestFetchCalendar(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar" {
			t.Errorf("path = %s, want /calendar", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", auth)
		}
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"batch_id": "b1", "batch_name": "Physics A", "start_datetime": "2026-03-11T09:00", "end_datetime": "2026-03-11T10:00"},
			},
			"holidays":    []map[string]any{{"date": "2026-03-13", "name": "Holi"}},
			"preferences": `{"snap_interval":15}`,
		})
	})

	window, err := client.FetchCalendar(context.Background(), api.CalendarQuery{
		Start:       time.Date(2026, 3, 9, 0, 0, 0, 0, time.Local),
		End:         time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local),
		View:        "week",
		TeacherID:   "t7",
		BypassCache: true,
	})
	if err != nil {
		t.Fatalf("FetchCalendar() error = %v", err)
	}

	want := map[string]string{
		"start": "2026-03-09", "end": "2026-03-15", "view": "week",
		"teacher_id": "t7", "bypass_cache": "1",
	}
	for key, val := range want {
		if gotQuery[key] != val {
			t.Errorf("query %s = %q, want %q", key, gotQuery[key], val)
		}
	}
	if len(window.Items) != 1 || window.Items[0].BatchID != "b1" {
		t.Errorf("Items = %+v, want one row for b1", window.Items)
	}
	if len(window.Holidays) != 1 || window.Holidays[0].Name != "Holi" {
		t.Errorf("Holidays = %+v, want Holi", window.Holidays)
	}
}

// TestFetchCalendar_OmitsOptionalParams tests that unset flags stay off the wire.
func TestFetchCalendar_OmitsOptionalParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("teacher_id") {
			t.Error("teacher_id sent without a filter")
		}
		if r.URL.Query().Has("bypass_cache") {
			t.Error("bypass_cache sent when not requested")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	})

	if _, err := client.FetchCalendar(context.Background(), api.CalendarQuery{
		Start: time.Now(), End: time.Now(), View: "day",
	}); err != nil {
		t.Fatalf("FetchCalendar() error = %v", err)
	}
}

// TestFetchAnalytics tests the free-form per-day counts decoding.
func TestFetchAnalytics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"days": []map[string]any{
				{"date": "2026-03-09", "classes": 4, "students_expected": 52, "note": "ignored"},
				{"date": "2026-03-10", "classes": 2},
			},
		})
	})

	days, err := client.FetchAnalytics(context.Background(), api.CalendarQuery{Start: time.Now(), End: time.Now()})
	if err != nil {
		t.Fatalf("FetchAnalytics() error = %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("len(days) = %d, want 2", len(days))
	}
	if days[0].Date != "2026-03-09" {
		t.Errorf("days[0].Date = %q, want 2026-03-09", days[0].Date)
	}
	if days[0].Counts["classes"] != 4 || days[0].Counts["students_expected"] != 52 {
		t.Errorf("days[0].Counts = %v, want classes=4 students_expected=52", days[0].Counts)
	}
	if _, ok := days[0].Counts["note"]; ok {
		t.Error("non-numeric field leaked into Counts")
	}
}

// TestGetSession_NotFound tests the null-equivalent result on 404.
func TestGetSession_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"session not found"}`, http.StatusNotFound)
	})

	detail, err := client.GetSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSession() error = %v, want nil on 404", err)
	}
	if detail != nil {
		t.Errorf("detail = %v, want nil", detail)
	}
}

// TestCreateOverride tests body encoding and response decoding.
func TestCreateOverride(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/calendar/override" {
			t.Errorf("%s %s, want POST /calendar/override", r.Method, r.URL.Path)
		}
		var req override.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.BatchID != "b1" || req.Kind != override.KindCancel {
			t.Errorf("body = %+v, want b1 cancel", req)
		}
		_ = json.NewEncoder(w).Encode(override.Override{ID: "o1", BatchID: "b1", Date: "2026-03-11", Kind: override.KindCancel})
	})

	created, err := client.CreateOverride(context.Background(), override.Request{
		BatchID: "b1", Date: "2026-03-11", Kind: override.KindCancel,
	})
	if err != nil {
		t.Fatalf("CreateOverride() error = %v", err)
	}
	if created.ID != "o1" {
		t.Errorf("created.ID = %q, want o1", created.ID)
	}
}

// TestErrorDetailExtraction tests the structured error field preference.
func TestErrorDetailExtraction(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "detail field preferred",
			status:  http.StatusConflict,
			body:    `{"detail":"slot already booked"}`,
			wantMsg: "slot already booked",
		},
		{
			name:    "message field fallback",
			status:  http.StatusBadRequest,
			body:    `{"message":"bad date"}`,
			wantMsg: "bad date",
		},
		{
			name:    "unstructured body falls back to status text",
			status:  http.StatusInternalServerError,
			body:    `boom`,
			wantMsg: http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := client.DeleteOverride(context.Background(), "o1")
			if err == nil {
				t.Fatal("DeleteOverride() error = nil, want error")
			}
			if got := api.Message(err); got != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

// TestListBatches tests catalog decoding.
func TestListBatches(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/batches" {
			t.Errorf("path = %s, want /batches", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "b1", "name": "Physics A"},
			{"id": "b2", "name": "Chemistry B"},
		})
	})

	batches, err := client.ListBatches(context.Background())
	if err != nil {
		t.Fatalf("ListBatches() error = %v", err)
	}
	if len(batches) != 2 || batches[1].Name != "Chemistry B" {
		t.Errorf("batches = %+v, want two entries", batches)
	}
}

// TestConflictCheck_Validate tests pre-flight payload validation.
func TestConflictCheck_Validate(t *testing.T) {
	valid := api.ConflictCheck{BatchID: "b1", Date: "2026-03-11", StartTime: "16:00", EndTime: "17:00"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	inverted := api.ConflictCheck{BatchID: "b1", Date: "2026-03-11", StartTime: "17:00", EndTime: "16:00"}
	if err := inverted.Validate(); err == nil {
		t.Error("Validate() = nil for inverted times, want error")
	}

	missing := api.ConflictCheck{Date: "2026-03-11", StartTime: "16:00", EndTime: "17:00"}
	if err := missing.Validate(); err == nil {
		t.Error("Validate() = nil for missing batch, want error")
	}
}
