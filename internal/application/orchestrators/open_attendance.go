package orchestrators

import (
	"context"
	"log/slog"

	"coachdesk/internal/adapters/api"
)

// AttendanceAPI is the backend slice the attendance bridge needs.
type AttendanceAPI interface {
	OpenAttendance(ctx context.Context, req api.AttendanceOpen) (string, error)
	GetSession(ctx context.Context, sessionID string) (map[string]any, error)
}

// OpenAttendanceDeps holds dependencies for the attendance bridge.
type OpenAttendanceDeps struct {
	API AttendanceAPI
}

// ExecuteOpenAttendance opens an attendance session for a class slot
// so the caller can navigate to it. No sync message is published: the
// attendance domain announces its own changes downstream.
// PRE: onSuccess and onError are non-nil
// POST: exactly one callback was invoked
func ExecuteOpenAttendance(ctx context.Context, req api.AttendanceOpen, deps OpenAttendanceDeps, onSuccess func(sessionID string), onError func(string)) {
	if err := req.Validate(); err != nil {
		onError(err.Error())
		return
	}
	sessionID, err := deps.API.OpenAttendance(ctx, req)
	if err != nil {
		onError(api.Message(err))
		return
	}
	slog.Info("attendance_session_opened", "batch_id", req.BatchID, "date", req.Date, "session_id", sessionID)
	onSuccess(sessionID)
}

// ExecuteSessionDetail fetches the detail object behind a
// session-backed calendar event.
// PRE: sessionID is non-empty; onSuccess and onError are non-nil
// POST: exactly one callback was invoked; a missing session succeeds
// with a nil detail
func ExecuteSessionDetail(ctx context.Context, sessionID string, deps OpenAttendanceDeps, onSuccess func(map[string]any), onError func(string)) {
	detail, err := deps.API.GetSession(ctx, sessionID)
	if err != nil {
		onError(api.Message(err))
		return
	}
	onSuccess(detail)
}
