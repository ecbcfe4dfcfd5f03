package store

// EventKind distinguishes ordinary user events from events created by
// a goal schedule commit.
type EventKind string

const (
	EventKindUser     EventKind = "user"
	EventKindGoalStep EventKind = "goal_step"
)

// IsValid checks if the kind is a known event kind.
func (k EventKind) IsValid() bool {
	switch k {
	case EventKindUser, EventKindGoalStep:
		return true
	default:
		return false
	}
}

// Event is a calendar-placed occurrence. Time is nil for all-day events.
type Event struct {
	UID             string
	UserID          string
	Title           string
	Date            string  // "YYYY-MM-DD"
	Time            *string // "HH:MM", nil = all-day
	Notes           string
	Kind            EventKind
	LinkedStepID    *int32
	LinkedGoalID    *int32
	CreatedTs       int64
	UpdatedTs       int64
	ID              int32
	DurationMinutes int32
}

type FindEvent struct {
	ID           *int32
	UserID       *string
	StartDate    *string // inclusive, "YYYY-MM-DD"
	EndDate      *string // inclusive, "YYYY-MM-DD"
	Kind         *EventKind
	LinkedGoalID *int32
}

type UpdateEvent struct {
	Title           *string
	Date            *string
	Time            *string
	Notes           *string
	DurationMinutes *int32
	UpdatedTs       *int64
	ID              int32
}

type DeleteEvent struct {
	ID     int32
	UserID string
}
