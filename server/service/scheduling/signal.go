package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeBucket is a user-selectable time-of-day preference.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
)

// IsValid checks if the bucket is a known time bucket.
func (b TimeBucket) IsValid() bool {
	switch b {
	case BucketMorning, BucketAfternoon, BucketEvening:
		return true
	default:
		return false
	}
}

// Signal is an incoming user action, either a parsed intent or a
// decoded inline-keyboard callback. It is a sealed union: every
// concrete type lives in this file and Transition matches on them
// exhaustively.
type Signal interface {
	signal()
}

// GoalCreated fires when goal creation completes and the scheduling
// flow should begin.
type GoalCreated struct {
	GoalID int32
}

// DeadlineProvided carries a deadline already resolved to a date.
type DeadlineProvided struct {
	Deadline time.Time
}

// ScheduleAccept is the user accepting the offer to build a schedule.
type ScheduleAccept struct {
	GoalID int32
}

// ScheduleDecline is the user declining the offer.
type ScheduleDecline struct {
	GoalID int32
}

// TimePrefToggle adds or removes one time-of-day bucket.
type TimePrefToggle struct {
	GoalID int32
	Bucket TimeBucket
}

// TimePrefDone closes time-of-day selection.
type TimePrefDone struct {
	GoalID int32
}

// DayPrefToggle adds or removes one weekday.
type DayPrefToggle struct {
	GoalID int32
	Day    time.Weekday
}

// DayPrefDone closes weekday selection.
type DayPrefDone struct {
	GoalID int32
}

// ScheduleConfirm commits the drafted plan.
type ScheduleConfirm struct {
	GoalID int32
}

// ScheduleCancel abandons the drafted plan.
type ScheduleCancel struct {
	GoalID int32
}

func (GoalCreated) signal()      {}
func (DeadlineProvided) signal() {}
func (ScheduleAccept) signal()   {}
func (ScheduleDecline) signal()  {}
func (TimePrefToggle) signal()   {}
func (TimePrefDone) signal()     {}
func (DayPrefToggle) signal()    {}
func (DayPrefDone) signal()      {}
func (ScheduleConfirm) signal()  {}
func (ScheduleCancel) signal()   {}

// Callback token actions. Kept stable: they travel inside Telegram
// callback data and must round-trip across deployments.
const (
	actionScheduleAccept  = "schedule_accept"
	actionScheduleDecline = "schedule_decline"
	actionTimePref        = "time_pref"
	actionTimePrefDone    = "time_pref_done"
	actionDayPref         = "day_pref"
	actionDayPrefDone     = "day_pref_done"
	actionScheduleConfirm = "schedule_confirm"
	actionScheduleCancel  = "schedule_cancel"
)

// EncodeCallback renders a signal as compact callback data for inline
// keyboards. Only button-born signals encode; GoalCreated and
// DeadlineProvided arrive as parsed intents, not buttons.
func EncodeCallback(sig Signal) (string, error) {
	switch s := sig.(type) {
	case ScheduleAccept:
		return fmt.Sprintf("%s:%d", actionScheduleAccept, s.GoalID), nil
	case ScheduleDecline:
		return fmt.Sprintf("%s:%d", actionScheduleDecline, s.GoalID), nil
	case TimePrefToggle:
		return fmt.Sprintf("%s:%s:%d", actionTimePref, s.Bucket, s.GoalID), nil
	case TimePrefDone:
		return fmt.Sprintf("%s:%d", actionTimePrefDone, s.GoalID), nil
	case DayPrefToggle:
		return fmt.Sprintf("%s:%d:%d", actionDayPref, int(s.Day), s.GoalID), nil
	case DayPrefDone:
		return fmt.Sprintf("%s:%d", actionDayPrefDone, s.GoalID), nil
	case ScheduleConfirm:
		return fmt.Sprintf("%s:%d", actionScheduleConfirm, s.GoalID), nil
	case ScheduleCancel:
		return fmt.Sprintf("%s:%d", actionScheduleCancel, s.GoalID), nil
	default:
		return "", fmt.Errorf("signal %T has no callback encoding", sig)
	}
}

// DecodeCallback parses callback data back into a typed signal.
// Unknown actions and malformed parameters return an error instead of
// a partially filled signal.
func DecodeCallback(data string) (Signal, error) {
	parts := strings.Split(data, ":")
	action := parts[0]

	switch action {
	case actionScheduleAccept, actionScheduleDecline, actionTimePrefDone,
		actionDayPrefDone, actionScheduleConfirm, actionScheduleCancel:
		if len(parts) != 2 {
			return nil, fmt.Errorf("callback %q: want 2 parts, got %d", action, len(parts))
		}
		goalID, err := parseGoalID(parts[1])
		if err != nil {
			return nil, err
		}
		switch action {
		case actionScheduleAccept:
			return ScheduleAccept{GoalID: goalID}, nil
		case actionScheduleDecline:
			return ScheduleDecline{GoalID: goalID}, nil
		case actionTimePrefDone:
			return TimePrefDone{GoalID: goalID}, nil
		case actionDayPrefDone:
			return DayPrefDone{GoalID: goalID}, nil
		case actionScheduleConfirm:
			return ScheduleConfirm{GoalID: goalID}, nil
		default:
			return ScheduleCancel{GoalID: goalID}, nil
		}
	case actionTimePref:
		if len(parts) != 3 {
			return nil, fmt.Errorf("callback %q: want 3 parts, got %d", action, len(parts))
		}
		bucket := TimeBucket(parts[1])
		if !bucket.IsValid() {
			return nil, fmt.Errorf("callback %q: unknown time bucket %q", action, parts[1])
		}
		goalID, err := parseGoalID(parts[2])
		if err != nil {
			return nil, err
		}
		return TimePrefToggle{GoalID: goalID, Bucket: bucket}, nil
	case actionDayPref:
		if len(parts) != 3 {
			return nil, fmt.Errorf("callback %q: want 3 parts, got %d", action, len(parts))
		}
		day, err := strconv.Atoi(parts[1])
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("callback %q: invalid weekday %q", action, parts[1])
		}
		goalID, err := parseGoalID(parts[2])
		if err != nil {
			return nil, err
		}
		return DayPrefToggle{GoalID: goalID, Day: time.Weekday(day)}, nil
	default:
		return nil, fmt.Errorf("unknown callback action %q", action)
	}
}

func parseGoalID(raw string) (int32, error) {
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid goal id %q: %w", raw, err)
	}
	return int32(id), nil
}
