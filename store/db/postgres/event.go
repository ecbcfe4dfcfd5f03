package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/initio-ai/initio/store"
)

func (d *DB) CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error) {
	if create.Kind == "" {
		create.Kind = store.EventKindUser
	}
	if create.DurationMinutes == 0 {
		create.DurationMinutes = 60
	}
	now := time.Now().Unix()
	create.CreatedTs = now
	create.UpdatedTs = now

	args := []any{
		create.UID,
		create.UserID,
		create.Title,
		create.Date,
		create.Time,
		create.DurationMinutes,
		create.Kind,
		create.LinkedStepID,
		create.LinkedGoalID,
		create.Notes,
		create.CreatedTs,
		create.UpdatedTs,
	}
	stmt := `
		INSERT INTO event (uid, user_id, title, date, time, duration_minutes, kind, linked_step_id, linked_goal_id, notes, created_ts, updated_ts)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UserID != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *find.UserID)
	}
	if find.StartDate != nil {
		where, args = append(where, "date >= "+placeholder(len(args)+1)), append(args, *find.StartDate)
	}
	if find.EndDate != nil {
		where, args = append(where, "date <= "+placeholder(len(args)+1)), append(args, *find.EndDate)
	}
	if find.Kind != nil {
		where, args = append(where, "kind = "+placeholder(len(args)+1)), append(args, *find.Kind)
	}
	if find.LinkedGoalID != nil {
		where, args = append(where, "linked_goal_id = "+placeholder(len(args)+1)), append(args, *find.LinkedGoalID)
	}

	query := `
		SELECT id, uid, user_id, title, date, time, duration_minutes, kind, linked_step_id, linked_goal_id, notes, created_ts, updated_ts
		FROM event
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY date ASC, time ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Event, 0)
	for rows.Next() {
		event := &store.Event{}
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.UserID,
			&event.Title,
			&event.Date,
			&event.Time,
			&event.DurationMinutes,
			&event.Kind,
			&event.LinkedStepID,
			&event.LinkedGoalID,
			&event.Notes,
			&event.CreatedTs,
			&event.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateEvent(ctx context.Context, update *store.UpdateEvent) (*store.Event, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if update.Date != nil {
		set, args = append(set, "date = "+placeholder(len(args)+1)), append(args, *update.Date)
	}
	if update.Time != nil {
		set, args = append(set, "time = "+placeholder(len(args)+1)), append(args, *update.Time)
	}
	if update.Notes != nil {
		set, args = append(set, "notes = "+placeholder(len(args)+1)), append(args, *update.Notes)
	}
	if update.DurationMinutes != nil {
		set, args = append(set, "duration_minutes = "+placeholder(len(args)+1)), append(args, *update.DurationMinutes)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE event SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, user_id, title, date, time, duration_minutes, kind, linked_step_id, linked_goal_id, notes, created_ts, updated_ts`
	event := &store.Event{}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&event.ID,
		&event.UID,
		&event.UserID,
		&event.Title,
		&event.Date,
		&event.Time,
		&event.DurationMinutes,
		&event.Kind,
		&event.LinkedStepID,
		&event.LinkedGoalID,
		&event.Notes,
		&event.CreatedTs,
		&event.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("event not found")
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error {
	where, args := []string{"id = $1"}, []any{delete.ID}
	if delete.UserID != "" {
		where, args = append(where, "user_id = $2"), append(args, delete.UserID)
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM event WHERE "+strings.Join(where, " AND "), args...)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("event not found")
	}
	return nil
}
