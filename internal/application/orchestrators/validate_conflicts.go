package orchestrators

import (
	"context"

	"coachdesk/internal/adapters/api"
)

// ConflictAPI is the backend slice conflict validation needs.
type ConflictAPI interface {
	ValidateConflicts(ctx context.Context, check api.ConflictCheck) (api.ConflictResult, error)
}

// ValidateConflictsDeps holds dependencies for conflict validation.
type ValidateConflictsDeps struct {
	API ConflictAPI
}

// ExecuteValidateConflicts asks the backend whether a proposed schedule
// change clashes with existing entries. Non-mutating: no sync message
// is published regardless of outcome.
// PRE: onSuccess and onError are non-nil
// POST: exactly one callback was invoked
func ExecuteValidateConflicts(ctx context.Context, check api.ConflictCheck, deps ValidateConflictsDeps, onSuccess func(api.ConflictResult), onError func(string)) {
	if err := check.Validate(); err != nil {
		onError(err.Error())
		return
	}
	result, err := deps.API.ValidateConflicts(ctx, check)
	if err != nil {
		onError(api.Message(err))
		return
	}
	onSuccess(result)
}
