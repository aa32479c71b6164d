package orchestrators

import (
	"context"
	"log/slog"

	"coachdesk/internal/adapters/api"
	"coachdesk/internal/domain/override"
	"coachdesk/internal/domain/syncbus"
)

// OverrideAPI is the backend slice override management needs.
type OverrideAPI interface {
	CreateOverride(ctx context.Context, req override.Request) (override.Override, error)
	UpdateOverride(ctx context.Context, id string, req override.Request) (override.Override, error)
	DeleteOverride(ctx context.Context, id string) error
}

// Publisher is the bus slice mutating operations need.
type Publisher interface {
	Publish(ctx context.Context, domains []string, meta map[string]any) error
}

// overrideSyncDomains are the tags published after every successful
// override mutation so other open views re-fetch.
var overrideSyncDomains = []string{syncbus.DomainCalendar, syncbus.DomainTimeCapacity}

// ManageOverrideDeps holds dependencies for override operations.
type ManageOverrideDeps struct {
	API OverrideAPI
	Bus Publisher
}

// ExecuteCreateOverride creates a date-specific override. The outcome
// reaches the caller only through the callbacks; no shared state is
// touched, so a failed edit cannot corrupt the rendered calendar.
// PRE: onSuccess and onError are non-nil
// POST: exactly one callback was invoked; on success a sync message
// tagged calendar and time_capacity was published
func ExecuteCreateOverride(ctx context.Context, req override.Request, deps ManageOverrideDeps, onSuccess func(override.Override), onError func(string)) {
	if err := req.Validate(); err != nil {
		onError(err.Error())
		return
	}
	created, err := deps.API.CreateOverride(ctx, req)
	if err != nil {
		onError(api.Message(err))
		return
	}
	publishOverrideChange(ctx, deps.Bus, "create", created.ID)
	onSuccess(created)
}

// ExecuteUpdateOverride updates an existing override.
// PRE: id is non-empty; onSuccess and onError are non-nil
// POST: exactly one callback was invoked; sync message published on success
func ExecuteUpdateOverride(ctx context.Context, id string, req override.Request, deps ManageOverrideDeps, onSuccess func(override.Override), onError func(string)) {
	if err := req.Validate(); err != nil {
		onError(err.Error())
		return
	}
	updated, err := deps.API.UpdateOverride(ctx, id, req)
	if err != nil {
		onError(api.Message(err))
		return
	}
	publishOverrideChange(ctx, deps.Bus, "update", id)
	onSuccess(updated)
}

// ExecuteDeleteOverride removes an override.
// PRE: id is non-empty; onSuccess and onError are non-nil
// POST: exactly one callback was invoked; sync message published on success
func ExecuteDeleteOverride(ctx context.Context, id string, deps ManageOverrideDeps, onSuccess func(), onError func(string)) {
	if err := deps.API.DeleteOverride(ctx, id); err != nil {
		onError(api.Message(err))
		return
	}
	publishOverrideChange(ctx, deps.Bus, "delete", id)
	onSuccess()
}

func publishOverrideChange(ctx context.Context, bus Publisher, action, overrideID string) {
	if bus == nil {
		return
	}
	meta := map[string]any{"source": "override", "action": action, "override_id": overrideID}
	if err := bus.Publish(ctx, overrideSyncDomains, meta); err != nil {
		// The mutation itself succeeded; other views will catch up on
		// their next load.
		slog.Warn("override_sync_publish_failed", "action", action, "override_id", overrideID, "error", err.Error())
	}
}
