package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/initio-ai/initio/store"
)

func feasibilityGoal(userID string, estimates []float64) *store.Goal {
	goal := &store.Goal{ID: 1, UID: "g1", UserID: userID, Title: "Write a book", Status: store.GoalStatusActive}
	for i, h := range estimates {
		hours := h
		goal.Steps = append(goal.Steps, &store.Step{
			ID:             int32(i + 1),
			GoalID:         1,
			Title:          "chapter",
			Order:          int32(i + 1),
			Status:         store.StepStatusPending,
			EstimatedHours: &hours,
		})
	}
	return goal
}

func TestCheckFeasibilityEqualityIsFeasible(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	// 6 morning slots of 2h over two days = 12h against 12h required.
	st.goals[1] = feasibilityGoal("u1", []float64{4, 8})
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	prefs := Preferences{TimeBuckets: []TimeBucket{BucketMorning}}
	result, err := engine.CheckFeasibility(ctx, 1, "u1", deadline, prefs)
	require.NoError(t, err)
	require.Equal(t, 12.0, result.RequiredHours)
	require.Equal(t, 12.0, result.AvailableHours)
	require.True(t, result.Feasible)
	require.Nil(t, result.SuggestedDeadline)
}

func TestCheckFeasibilityScenario(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = feasibilityGoal("u1", []float64{2, 3, 5})
	engine := testEngine(t, st, &fakePlanner{})
	prefs := Preferences{TimeBuckets: []TimeBucket{BucketMorning}}

	// Wide window: 3 morning slots x 2h on each of today and the next
	// day already covers the 10h of effort.
	deadline := time.Date(2025, 11, 9, 0, 0, 0, 0, time.UTC)
	result, err := engine.CheckFeasibility(ctx, 1, "u1", deadline, prefs)
	require.NoError(t, err)
	require.Equal(t, 10.0, result.RequiredHours)
	require.True(t, result.Feasible)

	// Narrow window: one busy morning leaves 2 slots x 2h = 4h. The
	// 6h deficit at 2h/day plus the 7 day buffer suggests +10 days.
	st.events = []*store.Event{
		{ID: 1, UserID: "u1", Date: "2025-11-03", Time: strPtr("09:00")},
		{ID: 2, UserID: "u1", Date: "2025-11-03", Time: strPtr("10:00")},
		{ID: 3, UserID: "u1", Date: "2025-11-03", Time: strPtr("11:00")},
		{ID: 4, UserID: "u1", Date: "2025-11-04", Time: strPtr("09:00")},
	}
	deadline = time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	result, err = engine.CheckFeasibility(ctx, 1, "u1", deadline, prefs)
	require.NoError(t, err)
	require.False(t, result.Feasible)
	require.Equal(t, 10.0, result.RequiredHours)
	require.Equal(t, 4.0, result.AvailableHours)
	require.NotNil(t, result.SuggestedDeadline)
	require.Equal(t, deadline.AddDate(0, 0, 10), *result.SuggestedDeadline)
	require.NotEmpty(t, result.Reason)
}

func TestCheckFeasibilityZeroEffortIsTrivial(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = feasibilityGoal("u1", nil)
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	result, err := engine.CheckFeasibility(ctx, 1, "u1", deadline, Preferences{})
	require.NoError(t, err)
	require.True(t, result.Feasible)
	require.Zero(t, result.RequiredHours)
	require.NotEmpty(t, result.Reason)
}

func TestCheckFeasibilityMissingEstimatesCountZero(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	goal := feasibilityGoal("u1", []float64{3})
	goal.Steps = append(goal.Steps, &store.Step{ID: 2, GoalID: 1, Title: "unsized", Order: 2, Status: store.StepStatusPending})
	st.goals[1] = goal
	engine := testEngine(t, st, &fakePlanner{})

	deadline := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	result, err := engine.CheckFeasibility(ctx, 1, "u1", deadline, Preferences{TimeBuckets: []TimeBucket{BucketMorning}})
	require.NoError(t, err)
	require.Equal(t, 3.0, result.RequiredHours)
}

func TestCheckFeasibilityPolicyConfigurable(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = feasibilityGoal("u1", []float64{10})
	sessions := NewMemorySessionStore()
	t.Cleanup(sessions.Close)
	engine := NewEngine(st, sessions, &fakePlanner{}, EngineConfig{
		Policy:                 FeasibilityPolicy{AssumedHoursPerDay: 5, BufferDays: 1},
		SessionDurationMinutes: 120,
	})
	engine.now = func() time.Time {
		return time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	}

	// Saturday-only morning work before a Tuesday deadline: no slots.
	deadline := time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC)
	prefs := Preferences{TimeBuckets: []TimeBucket{BucketMorning}, Days: []time.Weekday{time.Saturday}}
	result, err := engine.CheckFeasibility(ctx, 1, "u1", deadline, prefs)
	require.NoError(t, err)
	require.False(t, result.Feasible)
	// ceil(10/5) + 1 buffer day.
	require.Equal(t, deadline.AddDate(0, 0, 3), *result.SuggestedDeadline)
}

func TestCheckFeasibilityUnknownGoal(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, newFakeStore(), &fakePlanner{})
	_, err := engine.CheckFeasibility(ctx, 99, "u1", time.Now(), Preferences{})
	require.ErrorIs(t, err, ErrNotFound)
}
