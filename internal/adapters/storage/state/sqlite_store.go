package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"coachdesk/internal/adapters/storage"
	"coachdesk/internal/domain/syncbus"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
// PRE: db is a valid, open database connection with the schema applied
// POST: store is ready for use
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// HolidayLastSync reads the persisted last-sync timestamp.
// PRE: none
// POST: returns the timestamp and true, or false when never synced
func (s *SQLiteStore) HolidayLastSync(ctx context.Context) (time.Time, bool, error) {
	value, ok, err := s.get(ctx, KeyHolidayLastSync)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A corrupt value is the same as never having synced.
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// SetHolidayLastSync persists the last-sync timestamp as epoch millis.
// PRE: at is non-zero
// POST: timestamp is persisted under the fixed key
func (s *SQLiteStore) SetHolidayLastSync(ctx context.Context, at time.Time) error {
	return s.set(ctx, KeyHolidayLastSync, strconv.FormatInt(at.UnixMilli(), 10))
}

// PreferencesRaw reads the persisted preferences blob without parsing it.
// PRE: none
// POST: returns the raw value and true, or false when absent
func (s *SQLiteStore) PreferencesRaw(ctx context.Context) (string, bool, error) {
	return s.get(ctx, KeyPreferences)
}

// SavePreferencesRaw persists the opaque preferences blob.
// PRE: none
// POST: blob is persisted under the fixed key
func (s *SQLiteStore) SavePreferencesRaw(ctx context.Context, raw string) error {
	return s.set(ctx, KeyPreferences, raw)
}

// SaveSlot overwrites the durable message slot. The slot holds only the
// latest message; it is a delivery transport, not an archive.
// PRE: msg passed Validate()
// POST: slot row holds msg
func (s *SQLiteStore) SaveSlot(ctx context.Context, slot string, msg syncbus.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode slot message: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sync_slot (slot, message_id, payload, published_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   message_id=excluded.message_id, payload=excluded.payload, published_at=excluded.published_at`,
		slot, msg.ID, string(payload), msg.TS.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// LoadSlot reads the latest message in the slot.
// PRE: slot is non-empty
// POST: returns the message and true, or false when the slot is empty
func (s *SQLiteStore) LoadSlot(ctx context.Context, slot string) (syncbus.Message, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM sync_slot WHERE slot = ?`, slot,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return syncbus.Message{}, false, nil
	}
	if err != nil {
		return syncbus.Message{}, false, err
	}
	var msg syncbus.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return syncbus.Message{}, false, fmt.Errorf("decode slot message: %w", err)
	}
	return msg, true, nil
}

func (s *SQLiteStore) get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM engine_state WHERE key = ?`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO engine_state (key, value, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}
