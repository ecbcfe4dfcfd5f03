package store

// GoalStatus is the lifecycle status of a goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusArchived  GoalStatus = "archived"
)

// IsValid checks if the status is a known goal status.
func (s GoalStatus) IsValid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusArchived:
		return true
	default:
		return false
	}
}

type Goal struct {
	UID             string
	UserID          string
	Title           string
	Description     string
	Status          GoalStatus
	TargetDate      *string // "YYYY-MM-DD", nil until a deadline is chosen
	ProgressPercent float64 // derived from step completion
	CreatedTs       int64
	UpdatedTs       int64
	ID              int32
	IsScheduled     bool

	// Steps is populated by GetGoal and ListGoals, ordered by Step.Order.
	Steps []*Step
}

// Progress returns the completion percentage derived from the steps.
// A goal without steps has zero progress.
func (g *Goal) Progress() float64 {
	if len(g.Steps) == 0 {
		return 0
	}
	completed := 0
	for _, step := range g.Steps {
		if step.Status == StepStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(g.Steps)) * 100
}

type FindGoal struct {
	ID     *int32
	UID    *string
	UserID *string
	Status *GoalStatus
	Limit  *int
}

type UpdateGoal struct {
	Title           *string
	Description     *string
	Status          *GoalStatus
	TargetDate      *string
	ProgressPercent *float64
	IsScheduled     *bool
	UpdatedTs       *int64
	ID              int32
}

type DeleteGoal struct {
	ID     int32
	UserID string
}
