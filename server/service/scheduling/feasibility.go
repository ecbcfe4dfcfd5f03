package scheduling

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/initio-ai/initio/store"
)

// FeasibilityPolicy carries the business assumptions behind the
// infeasibility heuristic. Both values come from the profile, not from
// constants buried in the checker.
type FeasibilityPolicy struct {
	// AssumedHoursPerDay is the flat average of schedulable hours per
	// day used to size a suggested deadline extension.
	AssumedHoursPerDay float64
	// BufferDays is a fixed safety margin added on top of the
	// extension.
	BufferDays int
}

// DefaultFeasibilityPolicy mirrors the long-standing defaults.
var DefaultFeasibilityPolicy = FeasibilityPolicy{AssumedHoursPerDay: 2, BufferDays: 7}

// Feasibility is the verdict of comparing required effort against
// available capacity before a deadline. Infeasible is a first-class
// outcome, not an error: the user decides whether to proceed anyway.
type Feasibility struct {
	Feasible          bool       `json:"feasible"`
	RequiredHours     float64    `json:"requiredHours"`
	AvailableHours    float64    `json:"availableHours"`
	Reason            string     `json:"reason,omitempty"`
	SuggestedDeadline *time.Time `json:"suggestedDeadline,omitempty"`
}

// CheckFeasibility sums the goal's estimated step hours and compares
// them to the total slot capacity in [today, deadline] under the given
// preferences. Equality is feasible. The suggested deadline on an
// infeasible verdict is advisory: it assumes a flat number of available
// hours per day going forward and is a heuristic, not an optimizer.
func (e *Engine) CheckFeasibility(ctx context.Context, goalID int32, userID string, deadline time.Time, prefs Preferences) (*Feasibility, error) {
	goal, err := e.store.GetGoal(ctx, &store.FindGoal{ID: &goalID, UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("%w: get goal: %v", ErrExternalService, err)
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: goal %d", ErrNotFound, goalID)
	}

	var required float64
	for _, step := range goal.Steps {
		if step.EstimatedHours != nil {
			required += *step.EstimatedHours
		}
	}
	if required == 0 {
		return &Feasibility{
			Feasible: true,
			Reason:   "no estimated effort, nothing to schedule",
		}, nil
	}

	slots, err := e.FindFreeSlots(ctx, userID, e.today(), deadline, prefs, e.sessionDurationMinutes)
	if err != nil {
		return nil, err
	}
	var available float64
	for _, slot := range slots {
		available += float64(slot.DurationMinutes) / 60
	}

	result := &Feasibility{
		Feasible:       available >= required,
		RequiredHours:  required,
		AvailableHours: available,
	}
	if !result.Feasible {
		deficit := required - available
		extraDays := int(math.Ceil(deficit/e.policy.AssumedHoursPerDay)) + e.policy.BufferDays
		suggested := deadline.AddDate(0, 0, extraDays)
		result.SuggestedDeadline = &suggested
		result.Reason = fmt.Sprintf("need %.1fh but only %.1fh available before the deadline", required, available)
	}
	return result, nil
}
