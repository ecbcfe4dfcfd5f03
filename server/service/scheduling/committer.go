package scheduling

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/initio-ai/initio/store"
)

// CommitResult reports what a schedule commit actually did. Errors
// carries the step ids that could not be processed; events already
// created for other entries stay.
type CommitResult struct {
	CreatedEvents []*store.Event `json:"createdEvents"`
	Errors        []int32        `json:"errors"`
}

// Commit applies a validated plan: per entry it sets the step's planned
// date/time and duration and, when createEvents is set, creates one
// linked calendar event of kind goal_step. A missing or failing step id
// is recorded under Errors and the batch continues. After all entries
// the goal is marked scheduled and its deadline persisted. Nothing is
// rolled back on partial failure; the caller surfaces the per-step
// errors.
func (e *Engine) Commit(ctx context.Context, goalID int32, userID string, deadline time.Time, plan []PlanEntry, createEvents bool) (*CommitResult, error) {
	goal, err := e.store.GetGoal(ctx, &store.FindGoal{ID: &goalID, UserID: &userID})
	if err != nil {
		return nil, fmt.Errorf("%w: get goal: %v", ErrExternalService, err)
	}
	if goal == nil {
		return nil, fmt.Errorf("%w: goal %d", ErrNotFound, goalID)
	}

	steps := make(map[int32]*store.Step, len(goal.Steps))
	for _, step := range goal.Steps {
		steps[step.ID] = step
	}

	result := &CommitResult{CreatedEvents: []*store.Event{}, Errors: []int32{}}
	for _, entry := range plan {
		step, ok := steps[entry.StepID]
		if !ok {
			slog.Warn("commit: step not in goal", "goalID", goalID, "stepID", entry.StepID)
			result.Errors = append(result.Errors, entry.StepID)
			continue
		}

		duration := e.sessionDurationMinutes
		if step.EstimatedHours != nil {
			duration = int(*step.EstimatedHours * 60)
		}
		durationMinutes := int32(duration)

		update := &store.UpdateStep{
			ID:              step.ID,
			PlannedDate:     &entry.PlannedDate,
			DurationMinutes: &durationMinutes,
		}
		if entry.PlannedTime != "" {
			update.PlannedTime = &entry.PlannedTime
		}

		if createEvents && entry.PlannedDate != "" {
			event := &store.Event{
				UID:             shortuuid.New(),
				UserID:          userID,
				Title:           step.Title,
				Date:            entry.PlannedDate,
				DurationMinutes: durationMinutes,
				Kind:            store.EventKindGoalStep,
				LinkedStepID:    &step.ID,
				LinkedGoalID:    &goalID,
				Notes:           fmt.Sprintf("Step %d of goal %q", step.Order, goal.Title),
			}
			if entry.PlannedTime != "" {
				event.Time = &entry.PlannedTime
			}
			created, err := e.store.CreateEvent(ctx, event)
			if err != nil {
				slog.Error("commit: create event failed", "stepID", step.ID, "error", err)
				result.Errors = append(result.Errors, entry.StepID)
				continue
			}
			result.CreatedEvents = append(result.CreatedEvents, created)
			update.LinkedEventID = &created.ID
		}

		if _, err := e.store.UpdateStep(ctx, update); err != nil {
			slog.Error("commit: update step failed", "stepID", step.ID, "error", err)
			result.Errors = append(result.Errors, entry.StepID)
		}
	}

	scheduled := true
	targetDate := deadline.Format(dateLayout)
	if _, err := e.store.UpdateGoal(ctx, &store.UpdateGoal{
		ID:          goalID,
		IsScheduled: &scheduled,
		TargetDate:  &targetDate,
	}); err != nil {
		return result, fmt.Errorf("%w: mark goal scheduled: %v", ErrExternalService, err)
	}

	slog.Info("schedule committed",
		"goalID", goalID,
		"userID", userID,
		"entries", len(plan),
		"created", len(result.CreatedEvents),
		"errors", len(result.Errors))
	return result, nil
}
