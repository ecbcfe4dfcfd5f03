package scheduling

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/initio-ai/initio/store"
)

// fakeStore is an in-memory CalendarStore for engine tests.
type fakeStore struct {
	goals     map[int32]*store.Goal
	events    []*store.Event
	nextEvent int32

	failCreateEvent bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{goals: map[int32]*store.Goal{}, nextEvent: 1}
}

func (f *fakeStore) GetGoal(_ context.Context, find *store.FindGoal) (*store.Goal, error) {
	if find.ID == nil {
		return nil, nil
	}
	goal, ok := f.goals[*find.ID]
	if !ok {
		return nil, nil
	}
	if find.UserID != nil && goal.UserID != *find.UserID {
		return nil, nil
	}
	return goal, nil
}

func (f *fakeStore) UpdateGoal(_ context.Context, update *store.UpdateGoal) (*store.Goal, error) {
	goal, ok := f.goals[update.ID]
	if !ok {
		return nil, fmt.Errorf("goal not found")
	}
	if update.IsScheduled != nil {
		goal.IsScheduled = *update.IsScheduled
	}
	if update.TargetDate != nil {
		goal.TargetDate = update.TargetDate
	}
	if update.ProgressPercent != nil {
		goal.ProgressPercent = *update.ProgressPercent
	}
	return goal, nil
}

func (f *fakeStore) GetStep(_ context.Context, find *store.FindStep) (*store.Step, error) {
	for _, goal := range f.goals {
		for _, step := range goal.Steps {
			if find.ID != nil && step.ID == *find.ID {
				return step, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateStep(_ context.Context, update *store.UpdateStep) (*store.Step, error) {
	for _, goal := range f.goals {
		for _, step := range goal.Steps {
			if step.ID != update.ID {
				continue
			}
			if update.PlannedDate != nil {
				step.PlannedDate = update.PlannedDate
			}
			if update.PlannedTime != nil {
				step.PlannedTime = update.PlannedTime
			}
			if update.DurationMinutes != nil {
				step.DurationMinutes = update.DurationMinutes
			}
			if update.LinkedEventID != nil {
				step.LinkedEventID = update.LinkedEventID
			}
			if update.Status != nil {
				step.Status = *update.Status
			}
			return step, nil
		}
	}
	return nil, fmt.Errorf("step not found")
}

func (f *fakeStore) CreateEvent(_ context.Context, create *store.Event) (*store.Event, error) {
	if f.failCreateEvent {
		return nil, fmt.Errorf("event storage down")
	}
	create.ID = f.nextEvent
	f.nextEvent++
	f.events = append(f.events, create)
	return create, nil
}

func (f *fakeStore) ListEvents(_ context.Context, find *store.FindEvent) ([]*store.Event, error) {
	var list []*store.Event
	for _, event := range f.events {
		if find.UserID != nil && event.UserID != *find.UserID {
			continue
		}
		if find.StartDate != nil && event.Date < *find.StartDate {
			continue
		}
		if find.EndDate != nil && event.Date > *find.EndDate {
			continue
		}
		list = append(list, event)
	}
	return list, nil
}

// fakePlanner returns a canned plan, rejection or error.
type fakePlanner struct {
	plan      []PlanEntry
	rejection *PlanRejection
	err       error
	calls     int
}

func (p *fakePlanner) Plan(_ context.Context, _ *PlanRequest) ([]PlanEntry, *PlanRejection, error) {
	p.calls++
	return p.plan, p.rejection, p.err
}

func hoursPtr(h float64) *float64 { return &h }

func testGoal(userID string) *store.Goal {
	return &store.Goal{
		ID:     1,
		UID:    "g1",
		UserID: userID,
		Title:  "Learn Go",
		Status: store.GoalStatusActive,
		Steps: []*store.Step{
			{ID: 1, GoalID: 1, Title: "Read the tour", Order: 1, Status: store.StepStatusPending, EstimatedHours: hoursPtr(2)},
			{ID: 2, GoalID: 1, Title: "Build a CLI", Order: 2, Status: store.StepStatusPending, EstimatedHours: hoursPtr(3)},
		},
	}
}

func testEngine(t *testing.T, st *fakeStore, planner Planner) *Engine {
	t.Helper()
	sessions := NewMemorySessionStore()
	t.Cleanup(sessions.Close)
	engine := NewEngine(st, sessions, planner, EngineConfig{})
	engine.now = func() time.Time {
		return time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	}
	return engine
}

func TestEngineFullFlow(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	planner := &fakePlanner{plan: []PlanEntry{
		{StepID: 1, PlannedDate: "2025-11-04", PlannedTime: "09:00"},
		{StepID: 2, PlannedDate: "2025-11-05", PlannedTime: "09:00"},
	}}
	engine := testEngine(t, st, planner)

	reply, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "Learn Go")

	reply, err = engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)
	require.Len(t, reply.Buttons, 2)

	_, err = engine.Process(ctx, "u1", ScheduleAccept{GoalID: 1})
	require.NoError(t, err)

	_, err = engine.Process(ctx, "u1", TimePrefToggle{GoalID: 1, Bucket: BucketMorning})
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", TimePrefDone{GoalID: 1})
	require.NoError(t, err)

	reply, err = engine.Process(ctx, "u1", DayPrefDone{GoalID: 1})
	require.NoError(t, err)
	require.Equal(t, 1, planner.calls)
	require.Contains(t, reply.Text, "Read the tour")
	require.Len(t, reply.Buttons, 2)

	reply, err = engine.Process(ctx, "u1", ScheduleConfirm{GoalID: 1})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "2 events")

	require.True(t, st.goals[1].IsScheduled)
	require.Len(t, st.events, 2)
	require.NotNil(t, st.goals[1].Steps[0].LinkedEventID)
	require.NotNil(t, st.goals[1].Steps[1].LinkedEventID)

	// The dialog is back at idle; a second confirm does nothing.
	reply, err = engine.Process(ctx, "u1", ScheduleConfirm{GoalID: 1})
	require.NoError(t, err)
	require.Len(t, st.events, 2)
}

// A toggle landing outside its own stage (a stale inline keyboard
// after the session expired or moved on) must get a clarification, not
// a re-rendered preference keyboard.
func TestEngineStaleToggleGetsClarification(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	reply, err := engine.Process(ctx, "u1", TimePrefToggle{GoalID: 1, Bucket: BucketMorning})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "Nothing to schedule")
	require.Empty(t, reply.Buttons)

	reply, err = engine.Process(ctx, "u1", DayPrefToggle{GoalID: 1, Day: time.Monday})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "Nothing to schedule")
	require.Empty(t, reply.Buttons)

	// At the offer stage a day toggle is equally out of place.
	_, err = engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)

	reply, err = engine.Process(ctx, "u1", DayPrefToggle{GoalID: 1, Day: time.Monday})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "use the buttons")
	require.Empty(t, reply.Buttons)

	session, err := engine.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, StateScheduleOffer, session.State)
	require.Empty(t, session.Context.DayPrefs)
}

func TestEnginePastDeadlineReAsks(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	_, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)

	reply, err := engine.ProcessText(ctx, "u1", "2025-01-01")
	require.NoError(t, err)
	require.Contains(t, reply.Text, "in the past")

	// The dialog stays at deadline entry; a future date still works.
	reply, err = engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)
	require.Contains(t, reply.Text, "Deadline set to 2025-11-10")
}

func TestEnginePlannerFailureStaysAtDaysPref(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	planner := &fakePlanner{err: context.DeadlineExceeded}
	engine := testEngine(t, st, planner)

	_, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", ScheduleAccept{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", TimePrefToggle{GoalID: 1, Bucket: BucketEvening})
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", TimePrefDone{GoalID: 1})
	require.NoError(t, err)

	reply, err := engine.Process(ctx, "u1", DayPrefDone{GoalID: 1})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "could not build")

	session, err := engine.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, StateScheduleDaysPref, session.State)
	require.Empty(t, session.Context.Plan)

	// Confirm without a drafted plan never commits.
	_, err = engine.Process(ctx, "u1", ScheduleConfirm{GoalID: 1})
	require.NoError(t, err)
	require.Empty(t, st.events)
	require.False(t, st.goals[1].IsScheduled)
}

func TestEngineForeignStepIDsDropped(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	planner := &fakePlanner{plan: []PlanEntry{
		{StepID: 1, PlannedDate: "2025-11-04"},
		{StepID: 99, PlannedDate: "2025-11-05"},
	}}
	engine := testEngine(t, st, planner)

	_, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", ScheduleAccept{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", TimePrefToggle{GoalID: 1, Bucket: BucketMorning})
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", TimePrefDone{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", DayPrefDone{GoalID: 1})
	require.NoError(t, err)

	session, err := engine.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, session.Context.Plan, 1)
	require.Equal(t, int32(1), session.Context.Plan[0].StepID)
}

func TestEngineDeclineClearsContext(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	_, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)
	_, err = engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)
	_, err = engine.Process(ctx, "u1", ScheduleDecline{GoalID: 1})
	require.NoError(t, err)

	session, err := engine.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, StateIdle, session.State)
	require.Zero(t, session.Context.GoalID)
}

func TestEngineExpiredSessionReadsAsIdle(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	st.goals[1] = testGoal("u1")
	engine := testEngine(t, st, &fakePlanner{})

	_, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 1})
	require.NoError(t, err)

	// Jump past the 4h deadline-request window.
	engine.now = func() time.Time {
		return time.Date(2025, 11, 3, 15, 0, 0, 0, time.UTC)
	}

	reply, err := engine.ProcessText(ctx, "u1", "2025-11-10")
	require.NoError(t, err)
	require.Contains(t, reply.Text, "Nothing to schedule")
}

func TestEngineUnknownGoalResetsToIdle(t *testing.T) {
	ctx := context.Background()
	engine := testEngine(t, newFakeStore(), &fakePlanner{})

	reply, err := engine.Process(ctx, "u1", GoalCreated{GoalID: 42})
	require.NoError(t, err)
	require.Contains(t, reply.Text, "start over")

	session, err := engine.sessions.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, StateIdle, session.State)
}
