package store

import "testing"

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		name     string
		statuses []StepStatus
		want     float64
	}{
		{"no steps", nil, 0},
		{"none completed", []StepStatus{StepStatusPending, StepStatusPending}, 0},
		{"half completed", []StepStatus{StepStatusCompleted, StepStatusPending}, 50},
		{"all completed", []StepStatus{StepStatusCompleted, StepStatusCompleted}, 100},
		{"in_progress does not count", []StepStatus{StepStatusCompleted, StepStatusInProgress, StepStatusPending}, 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goal := &Goal{}
			for i, status := range tt.statuses {
				goal.Steps = append(goal.Steps, &Step{ID: int32(i + 1), Status: status})
			}
			if got := goal.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusValidity(t *testing.T) {
	if !GoalStatusActive.IsValid() || GoalStatus("bogus").IsValid() {
		t.Error("GoalStatus.IsValid misbehaves")
	}
	if !StepStatusInProgress.IsValid() || StepStatus("").IsValid() {
		t.Error("StepStatus.IsValid misbehaves")
	}
	if !EventKindGoalStep.IsValid() || EventKind("meeting").IsValid() {
		t.Error("EventKind.IsValid misbehaves")
	}
}
