package scheduling

import (
	"context"
	"time"

	"github.com/initio-ai/initio/store"
)

// PlanEntry places one step on the calendar. PlannedTime is empty for
// an all-day placement.
type PlanEntry struct {
	StepID      int32  `json:"stepId"`
	PlannedDate string `json:"plannedDate"` // "YYYY-MM-DD"
	PlannedTime string `json:"plannedTime,omitempty"`
}

// PlanRequest is everything a planner needs to propose a placement.
type PlanRequest struct {
	Goal      *store.Goal
	Deadline  time.Time
	StartDate time.Time
	Prefs     Preferences
	Events    []*store.Event
	Slots     []Slot
}

// Planner proposes a placement of a goal's steps into free slots, or
// reports why none exists. Implementations are external collaborators
// (an LLM, or a deterministic fallback) and must respect the context
// deadline.
type Planner interface {
	Plan(ctx context.Context, req *PlanRequest) ([]PlanEntry, *PlanRejection, error)
}

// PlanRejection is a planner's structured "no feasible plan" answer.
// Distinct from an error: the planner worked, the constraints did not.
type PlanRejection struct {
	Reason string `json:"reason"`
}
