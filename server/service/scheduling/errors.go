package scheduling

import "errors"

var (
	// ErrParseFailure means free text could not be resolved to a date.
	// The state does not advance; the caller asks for clarification.
	ErrParseFailure = errors.New("could not parse input")

	// ErrNotFound means a referenced goal, step or session is gone.
	// The engine resets the dialog to idle.
	ErrNotFound = errors.New("not found")

	// ErrExternalService means the planner or calendar data access was
	// unreachable or timed out. Side effects of the current stage are
	// aborted and the user gets a retry-oriented message.
	ErrExternalService = errors.New("external service failure")
)
