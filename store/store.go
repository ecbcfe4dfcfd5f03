// Package store provides database access to all raw objects.
package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/initio-ai/initio/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateGoal(ctx context.Context, create *Goal) (*Goal, error) {
	return s.driver.CreateGoal(ctx, create)
}

func (s *Store) ListGoals(ctx context.Context, find *FindGoal) ([]*Goal, error) {
	return s.driver.ListGoals(ctx, find)
}

// GetGoal returns a single goal with its steps, or nil when not found.
func (s *Store) GetGoal(ctx context.Context, find *FindGoal) (*Goal, error) {
	list, err := s.driver.ListGoals(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateGoal(ctx context.Context, update *UpdateGoal) (*Goal, error) {
	return s.driver.UpdateGoal(ctx, update)
}

func (s *Store) DeleteGoal(ctx context.Context, delete *DeleteGoal) error {
	return s.driver.DeleteGoal(ctx, delete)
}

func (s *Store) CreateStep(ctx context.Context, create *Step) (*Step, error) {
	return s.driver.CreateStep(ctx, create)
}

func (s *Store) ListSteps(ctx context.Context, find *FindStep) ([]*Step, error) {
	return s.driver.ListSteps(ctx, find)
}

// GetStep returns a single step, or nil when not found.
func (s *Store) GetStep(ctx context.Context, find *FindStep) (*Step, error) {
	list, err := s.driver.ListSteps(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) UpdateStep(ctx context.Context, update *UpdateStep) (*Step, error) {
	return s.driver.UpdateStep(ctx, update)
}

func (s *Store) DeleteStep(ctx context.Context, delete *DeleteStep) error {
	return s.driver.DeleteStep(ctx, delete)
}

// RecomputeGoalProgress reloads the goal's steps and persists the derived
// completion percentage. Called after any step status mutation.
func (s *Store) RecomputeGoalProgress(ctx context.Context, goalID int32) (*Goal, error) {
	goal, err := s.GetGoal(ctx, &FindGoal{ID: &goalID})
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, errors.Errorf("goal %d not found", goalID)
	}
	progress := goal.Progress()
	return s.driver.UpdateGoal(ctx, &UpdateGoal{ID: goalID, ProgressPercent: &progress})
}

func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

func (s *Store) UpdateEvent(ctx context.Context, update *UpdateEvent) (*Event, error) {
	return s.driver.UpdateEvent(ctx, update)
}

func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}
