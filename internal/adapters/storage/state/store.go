package state

import (
	"context"
	"time"

	"coachdesk/internal/domain/syncbus"
)

// Fixed keys for the engine_state table.
const (
	KeyHolidayLastSync = "holiday_last_sync"
	KeyPreferences     = "calendar_prefs"
)

// Store persists the engine's durable state between runs.
type Store interface {
	HolidayLastSync(ctx context.Context) (time.Time, bool, error)
	SetHolidayLastSync(ctx context.Context, at time.Time) error
	PreferencesRaw(ctx context.Context) (string, bool, error)
	SavePreferencesRaw(ctx context.Context, raw string) error
	SaveSlot(ctx context.Context, slot string, msg syncbus.Message) error
	LoadSlot(ctx context.Context, slot string) (syncbus.Message, bool, error)
}
