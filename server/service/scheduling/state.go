// Package scheduling implements the goal scheduling engine: the dialog
// state machine that walks a user from goal creation to committed
// calendar events, together with free-slot discovery, feasibility
// checking and the schedule commit itself.
package scheduling

import "time"

// DialogState is the current position of a user's multi-turn scheduling
// conversation.
type DialogState string

const (
	StateIdle             DialogState = "idle"
	StateDeadlineRequest  DialogState = "goal_deadline_request"
	StateScheduleOffer    DialogState = "goal_schedule_offer"
	StateScheduleTimePref DialogState = "goal_schedule_time_pref"
	StateScheduleDaysPref DialogState = "goal_schedule_days_pref"
	StateScheduleConfirm  DialogState = "goal_schedule_confirm"
)

// ContextTTL returns how long a session written in this state stays
// valid. Deadline entry gets the longest window since the user may need
// to think it over; idle sessions are cheap to rebuild.
func (s DialogState) ContextTTL() time.Duration {
	switch s {
	case StateIdle:
		return 1 * time.Hour
	case StateDeadlineRequest:
		return 4 * time.Hour
	default:
		return 2 * time.Hour
	}
}

// Transition decides the next state from the current state and an
// incoming signal. It returns (next, true) only for edges declared in
// the scheduling flow; every other (state, signal) pair yields
// (current, false) and the caller emits a clarification. Preference
// toggles mutate the session context but never transition.
func Transition(current DialogState, sig Signal, sctx *SessionContext) (DialogState, bool) {
	switch current {
	case StateIdle:
		if s, ok := sig.(GoalCreated); ok {
			sctx.GoalID = s.GoalID
			return StateDeadlineRequest, true
		}
	case StateDeadlineRequest:
		if s, ok := sig.(DeadlineProvided); ok {
			sctx.Deadline = s.Deadline
			return StateScheduleOffer, true
		}
	case StateScheduleOffer:
		switch sig.(type) {
		case ScheduleAccept:
			return StateScheduleTimePref, true
		case ScheduleDecline:
			*sctx = SessionContext{}
			return StateIdle, true
		}
	case StateScheduleTimePref:
		switch s := sig.(type) {
		case TimePrefToggle:
			sctx.TimePrefs = toggle(sctx.TimePrefs, s.Bucket)
		case TimePrefDone:
			if len(sctx.TimePrefs) > 0 {
				return StateScheduleDaysPref, true
			}
		}
	case StateScheduleDaysPref:
		switch s := sig.(type) {
		case DayPrefToggle:
			sctx.DayPrefs = toggle(sctx.DayPrefs, s.Day)
		case DayPrefDone:
			return StateScheduleConfirm, true
		}
	case StateScheduleConfirm:
		switch sig.(type) {
		case ScheduleConfirm:
			return StateIdle, true
		case ScheduleCancel:
			*sctx = SessionContext{}
			return StateIdle, true
		}
	}
	return current, false
}

// toggle adds the value to the set when absent and removes it when
// present, preserving order of the remaining values.
func toggle[T comparable](set []T, v T) []T {
	for i, existing := range set {
		if existing == v {
			return append(set[:i:i], set[i+1:]...)
		}
	}
	return append(set, v)
}
