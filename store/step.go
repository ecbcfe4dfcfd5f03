package store

// StepStatus is the lifecycle status of a step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
)

// IsValid checks if the status is a known step status.
func (s StepStatus) IsValid() bool {
	switch s {
	case StepStatusPending, StepStatusInProgress, StepStatusCompleted:
		return true
	default:
		return false
	}
}

// Step is an ordered, effort-estimated unit of work belonging to a goal.
// PlannedDate, PlannedTime, DurationMinutes and LinkedEventID stay nil
// until the step is placed on the calendar by a schedule commit.
type Step struct {
	Title           string
	Status          StepStatus
	EstimatedHours  *float64
	PlannedDate     *string // "YYYY-MM-DD"
	PlannedTime     *string // "HH:MM"
	DurationMinutes *int32
	LinkedEventID   *int32
	CompletedTs     *int64
	ID              int32
	GoalID          int32
	Order           int32
}

type FindStep struct {
	ID     *int32
	GoalID *int32
}

type UpdateStep struct {
	Title           *string
	Status          *StepStatus
	EstimatedHours  *float64
	PlannedDate     *string
	PlannedTime     *string
	DurationMinutes *int32
	LinkedEventID   *int32
	CompletedTs     *int64
	ID              int32
}

type DeleteStep struct {
	ID int32
}
