package planner

import (
	"context"
	"math"

	"github.com/initio-ai/initio/server/service/scheduling"
)

// SlotPlanner is the deterministic fallback: it walks the free slots in
// chronological order and assigns each step enough consecutive slots to
// cover its estimate. No AI provider needed, step order is preserved by
// construction.
type SlotPlanner struct{}

func NewSlotPlanner() *SlotPlanner {
	return &SlotPlanner{}
}

func (p *SlotPlanner) Plan(_ context.Context, req *scheduling.PlanRequest) ([]scheduling.PlanEntry, *scheduling.PlanRejection, error) {
	slots := req.Slots
	if len(slots) == 0 {
		return nil, &scheduling.PlanRejection{Reason: "no free slots before the deadline"}, nil
	}

	var plan []scheduling.PlanEntry
	cursor := 0
	for _, step := range req.Goal.Steps {
		if cursor >= len(slots) {
			return nil, &scheduling.PlanRejection{Reason: "not enough free slots to place every step"}, nil
		}

		// First session of the step is its planned date/time; extra
		// sessions just consume capacity.
		slot := slots[cursor]
		plan = append(plan, scheduling.PlanEntry{
			StepID:      step.ID,
			PlannedDate: slot.Date,
			PlannedTime: slot.Time,
		})
		cursor += sessionsNeeded(step.EstimatedHours, slot.DurationMinutes)
	}
	return plan, nil, nil
}

func sessionsNeeded(estimatedHours *float64, slotMinutes int) int {
	if estimatedHours == nil || *estimatedHours <= 0 || slotMinutes <= 0 {
		return 1
	}
	needed := int(math.Ceil(*estimatedHours * 60 / float64(slotMinutes)))
	if needed < 1 {
		return 1
	}
	return needed
}
