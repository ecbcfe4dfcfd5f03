package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/initio-ai/initio/store"
)

func (d *DB) CreateGoal(ctx context.Context, create *store.Goal) (*store.Goal, error) {
	if create.Status == "" {
		create.Status = store.GoalStatusActive
	}
	now := time.Now().Unix()
	create.CreatedTs = now
	create.UpdatedTs = now

	stmt := `
		INSERT INTO goal (uid, user_id, title, description, status, target_date, progress_percent, is_scheduled, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.UserID,
		create.Title,
		create.Description,
		create.Status,
		create.TargetDate,
		create.ProgressPercent,
		create.IsScheduled,
		create.CreatedTs,
		create.UpdatedTs,
	).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return create, nil
}

func (d *DB) ListGoals(ctx context.Context, find *store.FindGoal) ([]*store.Goal, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = ?"), append(args, *find.UID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = ?"), append(args, *find.UserID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}

	query := `
		SELECT id, uid, user_id, title, description, status, target_date, progress_percent, is_scheduled, created_ts, updated_ts
		FROM goal
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Goal, 0)
	for rows.Next() {
		goal := &store.Goal{}
		if err := rows.Scan(
			&goal.ID,
			&goal.UID,
			&goal.UserID,
			&goal.Title,
			&goal.Description,
			&goal.Status,
			&goal.TargetDate,
			&goal.ProgressPercent,
			&goal.IsScheduled,
			&goal.CreatedTs,
			&goal.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		list = append(list, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	if err := d.attachSteps(ctx, list); err != nil {
		return nil, err
	}

	return list, nil
}

// attachSteps loads the steps for all listed goals in a single query.
func (d *DB) attachSteps(ctx context.Context, goals []*store.Goal) error {
	if len(goals) == 0 {
		return nil
	}

	byID := make(map[int32]*store.Goal, len(goals))
	placeholders := make([]string, 0, len(goals))
	args := make([]any, 0, len(goals))
	for _, goal := range goals {
		byID[goal.ID] = goal
		placeholders = append(placeholders, "?")
		args = append(args, goal.ID)
	}

	query := `
		SELECT id, goal_id, title, step_order, status, estimated_hours, planned_date, planned_time, duration_minutes, linked_event_id, completed_ts
		FROM step
		WHERE goal_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY goal_id, step_order ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to list steps for goals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		step := &store.Step{}
		if err := scanStep(rows, step); err != nil {
			return err
		}
		if goal, ok := byID[step.GoalID]; ok {
			goal.Steps = append(goal.Steps, step)
		}
	}
	return rows.Err()
}

func (d *DB) UpdateGoal(ctx context.Context, update *store.UpdateGoal) (*store.Goal, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = ?"), append(args, *update.Title)
	}
	if update.Description != nil {
		set, args = append(set, "description = ?"), append(args, *update.Description)
	}
	if update.Status != nil {
		set, args = append(set, "status = ?"), append(args, *update.Status)
	}
	if update.TargetDate != nil {
		set, args = append(set, "target_date = ?"), append(args, *update.TargetDate)
	}
	if update.ProgressPercent != nil {
		set, args = append(set, "progress_percent = ?"), append(args, *update.ProgressPercent)
	}
	if update.IsScheduled != nil {
		set, args = append(set, "is_scheduled = ?"), append(args, *update.IsScheduled)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	set, args = append(set, "updated_ts = ?"), append(args, time.Now().Unix())
	args = append(args, update.ID)

	stmt := `UPDATE goal SET ` + strings.Join(set, ", ") + ` WHERE id = ?
		RETURNING id, uid, user_id, title, description, status, target_date, progress_percent, is_scheduled, created_ts, updated_ts`
	goal := &store.Goal{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&goal.ID,
		&goal.UID,
		&goal.UserID,
		&goal.Title,
		&goal.Description,
		&goal.Status,
		&goal.TargetDate,
		&goal.ProgressPercent,
		&goal.IsScheduled,
		&goal.CreatedTs,
		&goal.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("goal not found")
		}
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}

	return goal, nil
}

func (d *DB) DeleteGoal(ctx context.Context, delete *store.DeleteGoal) error {
	// Step rows cascade via the foreign key.
	result, err := d.db.ExecContext(ctx, "DELETE FROM goal WHERE id = ? AND user_id = ?", delete.ID, delete.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("goal not found")
	}
	return nil
}
