package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for database drivers.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	Migrate(ctx context.Context) error

	// Goal model related methods.
	CreateGoal(ctx context.Context, create *Goal) (*Goal, error)
	ListGoals(ctx context.Context, find *FindGoal) ([]*Goal, error)
	UpdateGoal(ctx context.Context, update *UpdateGoal) (*Goal, error)
	DeleteGoal(ctx context.Context, delete *DeleteGoal) error

	// Step model related methods.
	CreateStep(ctx context.Context, create *Step) (*Step, error)
	ListSteps(ctx context.Context, find *FindStep) ([]*Step, error)
	UpdateStep(ctx context.Context, update *UpdateStep) (*Step, error)
	DeleteStep(ctx context.Context, delete *DeleteStep) error

	// Event model related methods.
	CreateEvent(ctx context.Context, create *Event) (*Event, error)
	ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error)
	UpdateEvent(ctx context.Context, update *UpdateEvent) (*Event, error)
	DeleteEvent(ctx context.Context, delete *DeleteEvent) error
}
