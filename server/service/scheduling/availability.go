package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/initio-ai/initio/store"
)

// CalendarStore is the slice of store.Store the engine needs. Narrow on
// purpose so tests can substitute an in-memory fake.
type CalendarStore interface {
	GetGoal(ctx context.Context, find *store.FindGoal) (*store.Goal, error)
	UpdateGoal(ctx context.Context, update *store.UpdateGoal) (*store.Goal, error)
	GetStep(ctx context.Context, find *store.FindStep) (*store.Step, error)
	UpdateStep(ctx context.Context, update *store.UpdateStep) (*store.Step, error)
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
}

// Preferences narrow the availability search. Empty slices mean no
// restriction on that axis.
type Preferences struct {
	TimeBuckets []TimeBucket
	Days        []time.Weekday
}

// Slot is a candidate, non-conflicting time window. Ephemeral: computed
// on demand, passed to the planner and committer, never persisted.
type Slot struct {
	Date            string `json:"date"` // "YYYY-MM-DD"
	Time            string `json:"time"` // "HH:MM"
	DurationMinutes int    `json:"durationMinutes"`
}

// Candidate start times per bucket, hourly with the bucket end
// exclusive.
var bucketTimes = map[TimeBucket][]string{
	BucketMorning:   {"09:00", "10:00", "11:00"},
	BucketAfternoon: {"12:00", "13:00", "14:00", "15:00", "16:00", "17:00"},
	BucketEvening:   {"18:00", "19:00", "20:00", "21:00"},
}

// defaultTimes is the business-hours candidate set used when the user
// expressed no time preference.
var defaultTimes = []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00", "17:00"}

const dateLayout = "2006-01-02"

// FindFreeSlots walks each day in [start, end], keeps days matching the
// day preference, generates candidate start times from the time-bucket
// preference, and drops candidates whose start time collides with an
// existing event of the user on that day.
//
// Conflict detection is slot-granular: a candidate is excluded only
// when an event starts at exactly the same time. An event starting a
// few minutes off a candidate is not treated as a conflict.
func (e *Engine) FindFreeSlots(ctx context.Context, userID string, start, end time.Time, prefs Preferences, sessionDurationMinutes int) ([]Slot, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("end %s before start %s", end.Format(dateLayout), start.Format(dateLayout))
	}

	startDate := start.Format(dateLayout)
	endDate := end.Format(dateLayout)
	events, err := e.store.ListEvents(ctx, &store.FindEvent{
		UserID:    &userID,
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list events: %v", ErrExternalService, err)
	}

	// Busy start times keyed by "date time". All-day events have no
	// start time and do not block any candidate.
	busy := make(map[string]struct{}, len(events))
	for _, event := range events {
		if event.Time == nil {
			continue
		}
		busy[event.Date+" "+*event.Time] = struct{}{}
	}

	times := candidateTimes(prefs.TimeBuckets)
	allowedDays := make(map[time.Weekday]struct{}, len(prefs.Days))
	for _, day := range prefs.Days {
		allowedDays[day] = struct{}{}
	}

	var slots []Slot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if len(allowedDays) > 0 {
			if _, ok := allowedDays[day.Weekday()]; !ok {
				continue
			}
		}
		date := day.Format(dateLayout)
		for _, t := range times {
			if _, taken := busy[date+" "+t]; taken {
				continue
			}
			slots = append(slots, Slot{
				Date:            date,
				Time:            t,
				DurationMinutes: sessionDurationMinutes,
			})
		}
	}
	return slots, nil
}

// candidateTimes merges the hourly start times of the selected buckets
// preserving chronological order, or falls back to business hours.
func candidateTimes(buckets []TimeBucket) []string {
	if len(buckets) == 0 {
		return defaultTimes
	}
	selected := make(map[TimeBucket]struct{}, len(buckets))
	for _, b := range buckets {
		selected[b] = struct{}{}
	}
	var times []string
	for _, bucket := range []TimeBucket{BucketMorning, BucketAfternoon, BucketEvening} {
		if _, ok := selected[bucket]; ok {
			times = append(times, bucketTimes[bucket]...)
		}
	}
	return times
}
