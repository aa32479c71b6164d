package state_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"coachdesk/internal/adapters/storage"
	"coachdesk/internal/adapters/storage/state"
	"coachdesk/internal/domain/syncbus"
)

func newTestStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	return state.NewSQLiteStore(db)
}

// TestHolidayLastSync tests the persisted throttle timestamp round trip.
func TestHolidayLastSync(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.HolidayLastSync(ctx)
	if err != nil {
		t.Fatalf("HolidayLastSync() error = %v", err)
	}
	if ok {
		t.Error("HolidayLastSync() ok = true on empty store, want false")
	}

	at := time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC)
	if err := store.SetHolidayLastSync(ctx, at); err != nil {
		t.Fatalf("SetHolidayLastSync() error = %v", err)
	}

	got, ok, err := store.HolidayLastSync(ctx)
	if err != nil {
		t.Fatalf("HolidayLastSync() error = %v", err)
	}
	if !ok {
		t.Fatal("HolidayLastSync() ok = false after set, want true")
	}
	if !got.Equal(at) {
		t.Errorf("HolidayLastSync() = %v, want %v", got, at)
	}

	// Overwrite keeps a single value under the fixed key.
	later := at.Add(48 * time.Hour)
	if err := store.SetHolidayLastSync(ctx, later); err != nil {
		t.Fatalf("SetHolidayLastSync() error = %v", err)
	}
	got, _, _ = store.HolidayLastSync(ctx)
	if !got.Equal(later) {
		t.Errorf("HolidayLastSync() after overwrite = %v, want %v", got, later)
	}
}

// TestHolidayLastSync_CorruptValue tests that garbage reads as never-synced.
func TestHolidayLastSync_CorruptValue(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB() error = %v", err)
	}
	if _, err := db.Exec(`INSERT INTO engine_state (key, value, updated_at) VALUES (?, ?, ?)`,
		state.KeyHolidayLastSync, "not-a-number", "2026-03-11T00:00:00Z"); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}

	store := state.NewSQLiteStore(db)
	_, ok, err := store.HolidayLastSync(context.Background())
	if err != nil {
		t.Fatalf("HolidayLastSync() error = %v", err)
	}
	if ok {
		t.Error("HolidayLastSync() ok = true for corrupt value, want false")
	}
}

// TestPreferencesRaw tests the opaque preferences blob round trip.
func TestPreferencesRaw(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.PreferencesRaw(ctx)
	if err != nil {
		t.Fatalf("PreferencesRaw() error = %v", err)
	}
	if ok {
		t.Error("PreferencesRaw() ok = true on empty store, want false")
	}

	blob := `{"snap_interval":15}`
	if err := store.SavePreferencesRaw(ctx, blob); err != nil {
		t.Fatalf("SavePreferencesRaw() error = %v", err)
	}
	got, ok, err := store.PreferencesRaw(ctx)
	if err != nil || !ok {
		t.Fatalf("PreferencesRaw() = %v, %v, %v", got, ok, err)
	}
	if got != blob {
		t.Errorf("PreferencesRaw() = %q, want %q", got, blob)
	}
}

// TestSlotRoundTrip tests the durable message slot.
func TestSlotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.LoadSlot(ctx, "calendar_sync")
	if err != nil {
		t.Fatalf("LoadSlot() error = %v", err)
	}
	if ok {
		t.Error("LoadSlot() ok = true on empty slot, want false")
	}

	first := syncbus.Message{
		ID:      "m1",
		TS:      time.Now().UTC().Truncate(time.Millisecond),
		Domains: []string{syncbus.DomainCalendar, syncbus.DomainTimeCapacity},
		Meta:    map[string]any{"source": "override"},
	}
	if err := store.SaveSlot(ctx, "calendar_sync", first); err != nil {
		t.Fatalf("SaveSlot() error = %v", err)
	}

	got, ok, err := store.LoadSlot(ctx, "calendar_sync")
	if err != nil || !ok {
		t.Fatalf("LoadSlot() = %+v, %v, %v", got, ok, err)
	}
	if got.ID != "m1" || len(got.Domains) != 2 {
		t.Errorf("LoadSlot() = %+v, want m1 with two domains", got)
	}

	// The slot holds only the latest message.
	second := syncbus.Message{ID: "m2", TS: time.Now().UTC(), Domains: []string{syncbus.DomainBatches}}
	if err := store.SaveSlot(ctx, "calendar_sync", second); err != nil {
		t.Fatalf("SaveSlot() error = %v", err)
	}
	got, _, _ = store.LoadSlot(ctx, "calendar_sync")
	if got.ID != "m2" {
		t.Errorf("LoadSlot() after overwrite = %q, want m2", got.ID)
	}
}
