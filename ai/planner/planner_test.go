package planner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/initio-ai/initio/server/service/scheduling"
	"github.com/initio-ai/initio/store"
)

func TestParseResponseArray(t *testing.T) {
	content := `[
		{"step_id": 5, "planned_date": "2025-11-15", "planned_time": "10:00"},
		{"step_id": 6, "planned_date": "2025-11-17"}
	]`
	plan, rejection, err := ParseResponse(content)
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, plan, 2)
	require.Equal(t, int32(5), plan[0].StepID)
	require.Equal(t, "10:00", plan[0].PlannedTime)
	require.Equal(t, "2025-11-17", plan[1].PlannedDate)
	require.Empty(t, plan[1].PlannedTime)
}

func TestParseResponseFencedJSON(t *testing.T) {
	content := "```json\n[{\"step_id\": 1, \"planned_date\": \"2025-11-15\"}]\n```"
	plan, rejection, err := ParseResponse(content)
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, plan, 1)
}

func TestParseResponseRejection(t *testing.T) {
	plan, rejection, err := ParseResponse(`{"reason": "deadline too tight"}`)
	require.NoError(t, err)
	require.Nil(t, plan)
	require.NotNil(t, rejection)
	require.Equal(t, "deadline too tight", rejection.Reason)
}

func TestParseResponseEmptyArrayIsRejection(t *testing.T) {
	plan, rejection, err := ParseResponse(`[]`)
	require.NoError(t, err)
	require.Nil(t, plan)
	require.NotNil(t, rejection)
}

func TestParseResponseInvalid(t *testing.T) {
	for _, content := range []string{
		"",
		"no schedule for you",
		`{"note": "missing reason"}`,
		`[{"planned_date": "2025-11-15"}]`,
		`[{"step_id": 1}]`,
		`[{"step_id": 1, "planned_date": "november 15"}]`,
	} {
		_, _, err := ParseResponse(content)
		require.Error(t, err, "content %q", content)
	}
}

func hoursPtr(h float64) *float64 { return &h }

func planRequest(slots []scheduling.Slot) *scheduling.PlanRequest {
	return &scheduling.PlanRequest{
		Goal: &store.Goal{
			ID:    1,
			Title: "Learn Go",
			Steps: []*store.Step{
				{ID: 1, Order: 1, Title: "Read the tour", EstimatedHours: hoursPtr(2)},
				{ID: 2, Order: 2, Title: "Build a CLI", EstimatedHours: hoursPtr(4)},
			},
		},
		StartDate: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC),
		Deadline:  time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
		Slots:     slots,
	}
}

func TestSlotPlannerPreservesOrder(t *testing.T) {
	slots := []scheduling.Slot{
		{Date: "2025-11-04", Time: "09:00", DurationMinutes: 120},
		{Date: "2025-11-04", Time: "10:00", DurationMinutes: 120},
		{Date: "2025-11-05", Time: "09:00", DurationMinutes: 120},
		{Date: "2025-11-06", Time: "09:00", DurationMinutes: 120},
	}
	plan, rejection, err := NewSlotPlanner().Plan(context.Background(), planRequest(slots))
	require.NoError(t, err)
	require.Nil(t, rejection)
	require.Len(t, plan, 2)
	// Step 1 takes one 2h session, step 2 starts at the next slot.
	require.Equal(t, "2025-11-04", plan[0].PlannedDate)
	require.Equal(t, "09:00", plan[0].PlannedTime)
	require.Equal(t, "2025-11-04", plan[1].PlannedDate)
	require.Equal(t, "10:00", plan[1].PlannedTime)
	require.True(t, plan[0].PlannedDate <= plan[1].PlannedDate)
}

func TestSlotPlannerRejectsWhenSlotsRunOut(t *testing.T) {
	slots := []scheduling.Slot{
		{Date: "2025-11-04", Time: "09:00", DurationMinutes: 120},
	}
	plan, rejection, err := NewSlotPlanner().Plan(context.Background(), planRequest(slots))
	require.NoError(t, err)
	require.Nil(t, plan)
	require.NotNil(t, rejection)
}

func TestSlotPlannerNoSlots(t *testing.T) {
	_, rejection, err := NewSlotPlanner().Plan(context.Background(), planRequest(nil))
	require.NoError(t, err)
	require.NotNil(t, rejection)
}

func TestBuildPromptCapsSlots(t *testing.T) {
	var slots []scheduling.Slot
	for i := 0; i < 30; i++ {
		slots = append(slots, scheduling.Slot{Date: "2025-11-04", Time: "09:00", DurationMinutes: 60})
	}
	prompt := buildPrompt(planRequest(slots))
	require.Contains(t, prompt, "and 10 more slots")
	require.Equal(t, promptSlotCap, strings.Count(prompt, "- 2025-11-04 at 09:00"))
	require.Contains(t, prompt, "ID: 1, order 1")
	require.Contains(t, prompt, "ID: 2, order 2")
}
