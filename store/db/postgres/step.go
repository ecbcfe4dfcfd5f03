package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/initio-ai/initio/store"
)

func (d *DB) CreateStep(ctx context.Context, create *store.Step) (*store.Step, error) {
	if create.Status == "" {
		create.Status = store.StepStatusPending
	}

	args := []any{
		create.GoalID,
		create.Title,
		create.Order,
		create.Status,
		create.EstimatedHours,
		create.PlannedDate,
		create.PlannedTime,
		create.DurationMinutes,
		create.LinkedEventID,
		create.CompletedTs,
	}
	stmt := `
		INSERT INTO step (goal_id, title, step_order, status, estimated_hours, planned_date, planned_time, duration_minutes, linked_event_id, completed_ts)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create step: %w", err)
	}

	return create, nil
}

func (d *DB) ListSteps(ctx context.Context, find *store.FindStep) ([]*store.Step, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.GoalID != nil {
		where, args = append(where, "goal_id = "+placeholder(len(args)+1)), append(args, *find.GoalID)
	}

	query := `
		SELECT id, goal_id, title, step_order, status, estimated_hours, planned_date, planned_time, duration_minutes, linked_event_id, completed_ts
		FROM step
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY step_order ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Step, 0)
	for rows.Next() {
		step := &store.Step{}
		if err := scanStep(rows, step); err != nil {
			return nil, err
		}
		list = append(list, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate steps: %w", err)
	}

	return list, nil
}

func scanStep(rows *sql.Rows, step *store.Step) error {
	if err := rows.Scan(
		&step.ID,
		&step.GoalID,
		&step.Title,
		&step.Order,
		&step.Status,
		&step.EstimatedHours,
		&step.PlannedDate,
		&step.PlannedTime,
		&step.DurationMinutes,
		&step.LinkedEventID,
		&step.CompletedTs,
	); err != nil {
		return fmt.Errorf("failed to scan step: %w", err)
	}
	return nil
}

func (d *DB) UpdateStep(ctx context.Context, update *store.UpdateStep) (*store.Step, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if update.Status != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *update.Status)
	}
	if update.EstimatedHours != nil {
		set, args = append(set, "estimated_hours = "+placeholder(len(args)+1)), append(args, *update.EstimatedHours)
	}
	if update.PlannedDate != nil {
		set, args = append(set, "planned_date = "+placeholder(len(args)+1)), append(args, *update.PlannedDate)
	}
	if update.PlannedTime != nil {
		set, args = append(set, "planned_time = "+placeholder(len(args)+1)), append(args, *update.PlannedTime)
	}
	if update.DurationMinutes != nil {
		set, args = append(set, "duration_minutes = "+placeholder(len(args)+1)), append(args, *update.DurationMinutes)
	}
	if update.LinkedEventID != nil {
		set, args = append(set, "linked_event_id = "+placeholder(len(args)+1)), append(args, *update.LinkedEventID)
	}
	if update.CompletedTs != nil {
		set, args = append(set, "completed_ts = "+placeholder(len(args)+1)), append(args, *update.CompletedTs)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE step SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, goal_id, title, step_order, status, estimated_hours, planned_date, planned_time, duration_minutes, linked_event_id, completed_ts`
	step := &store.Step{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&step.ID,
		&step.GoalID,
		&step.Title,
		&step.Order,
		&step.Status,
		&step.EstimatedHours,
		&step.PlannedDate,
		&step.PlannedTime,
		&step.DurationMinutes,
		&step.LinkedEventID,
		&step.CompletedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("step not found")
		}
		return nil, fmt.Errorf("failed to update step: %w", err)
	}

	return step, nil
}

func (d *DB) DeleteStep(ctx context.Context, delete *store.DeleteStep) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM step WHERE id = $1", delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete step: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("step not found")
	}
	return nil
}
