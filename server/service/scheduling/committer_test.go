package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/initio-ai/initio/store"
)

func TestCommitMixedValidAndUnknownStepIDs(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	plan := []PlanEntry{
		{StepID: 1, PlannedDate: "2025-11-05", PlannedTime: "09:00"},
		{StepID: 99, PlannedDate: "2025-11-06", PlannedTime: "09:00"},
	}
	result, err := engine.Commit(ctx, 1, "u1", deadline, plan, true)
	require.NoError(t, err)
	require.Len(t, result.CreatedEvents, 1)
	require.Equal(t, []int32{99}, result.Errors)

	step := st.goals[1].Steps[0]
	require.NotNil(t, step.PlannedDate)
	require.Equal(t, "2025-11-05", *step.PlannedDate)
	require.NotNil(t, step.LinkedEventID)
	require.Equal(t, result.CreatedEvents[0].ID, *step.LinkedEventID)
	require.True(t, st.goals[1].IsScheduled)
}

func TestCommitSingleStepLeavesOthersUntouched(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	plan := []PlanEntry{{StepID: 1, PlannedDate: "2025-11-10"}}
	result, err := engine.Commit(ctx, 1, "u1", deadline, plan, true)
	require.NoError(t, err)
	require.Len(t, result.CreatedEvents, 1)
	require.Empty(t, result.Errors)

	first, second := st.goals[1].Steps[0], st.goals[1].Steps[1]
	require.NotNil(t, first.PlannedDate)
	require.NotNil(t, first.LinkedEventID)
	require.Nil(t, second.PlannedDate)
	require.Nil(t, second.LinkedEventID)
	require.True(t, st.goals[1].IsScheduled)
	require.NotNil(t, st.goals[1].TargetDate)
	require.Equal(t, "2025-11-10", *st.goals[1].TargetDate)
}

func TestCommitEventCarriesStepMetadata(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	plan := []PlanEntry{{StepID: 2, PlannedDate: "2025-11-06", PlannedTime: "18:00"}}
	result, err := engine.Commit(ctx, 1, "u1", deadline, plan, true)
	require.NoError(t, err)
	require.Len(t, result.CreatedEvents, 1)

	event := result.CreatedEvents[0]
	require.Equal(t, "Build a CLI", event.Title)
	require.Equal(t, store.EventKindGoalStep, event.Kind)
	require.Equal(t, "2025-11-06", event.Date)
	require.NotNil(t, event.Time)
	require.Equal(t, "18:00", *event.Time)
	// Derived from the step's 3h estimate.
	require.Equal(t, int32(180), event.DurationMinutes)
	require.NotNil(t, event.LinkedStepID)
	require.Equal(t, int32(2), *event.LinkedStepID)
	require.NotNil(t, event.LinkedGoalID)
	require.Equal(t, int32(1), *event.LinkedGoalID)
	require.Contains(t, event.Notes, "Learn Go")
	require.NotEmpty(t, event.UID)
}

func TestCommitWithoutEventsOnlyPlansSteps(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	plan := []PlanEntry{{StepID: 1, PlannedDate: "2025-11-05", PlannedTime: "09:00"}}
	result, err := engine.Commit(ctx, 1, "u1", deadline, plan, false)
	require.NoError(t, err)
	require.Empty(t, result.CreatedEvents)
	require.Empty(t, st.events)

	step := st.goals[1].Steps[0]
	require.NotNil(t, step.PlannedDate)
	require.Nil(t, step.LinkedEventID)
}

func TestCommitEventFailureReportedPerStep(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	st.failCreateEvent = true
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	plan := []PlanEntry{
		{StepID: 1, PlannedDate: "2025-11-05"},
		{StepID: 2, PlannedDate: "2025-11-06"},
	}
	result, err := engine.Commit(ctx, 1, "u1", deadline, plan, true)
	require.NoError(t, err)
	require.Empty(t, result.CreatedEvents)
	require.ElementsMatch(t, []int32{1, 2}, result.Errors)
}

func TestCommitUnknownGoal(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, newFakeStore(), &fakePlanner{})
	_, err := engine.Commit(ctx, 42, "u1", time.Now(), []PlanEntry{{StepID: 1, PlannedDate: "2025-11-05"}}, true)
	require.ErrorIs(t, err, ErrNotFound)
}
