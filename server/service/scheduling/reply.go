package scheduling

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Button is a stage-aware inline button. CallbackData round-trips
// through DecodeCallback when the user presses it.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callbackData"`
}

// Reply is the engine's answer to one signal: text for the user plus
// optional buttons for the next stage.
type Reply struct {
	Text    string   `json:"text"`
	Buttons []Button `json:"buttons,omitempty"`
}

var bucketLabels = map[TimeBucket]string{
	BucketMorning:   "Morning (9-12)",
	BucketAfternoon: "Afternoon (12-18)",
	BucketEvening:   "Evening (18-22)",
}

var dayLabels = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

func mustEncode(sig Signal) string {
	data, err := EncodeCallback(sig)
	if err != nil {
		panic(err)
	}
	return data
}

// timePrefButtons renders the time-of-day keyboard with checkmarks on
// the currently selected buckets.
func timePrefButtons(goalID int32, selected []TimeBucket) []Button {
	chosen := make(map[TimeBucket]bool, len(selected))
	for _, b := range selected {
		chosen[b] = true
	}
	buttons := make([]Button, 0, 4)
	for _, bucket := range []TimeBucket{BucketMorning, BucketAfternoon, BucketEvening} {
		label := bucketLabels[bucket]
		if chosen[bucket] {
			label = "✅ " + label
		}
		buttons = append(buttons, Button{
			Text:         label,
			CallbackData: mustEncode(TimePrefToggle{GoalID: goalID, Bucket: bucket}),
		})
	}
	buttons = append(buttons, Button{
		Text:         "Done",
		CallbackData: mustEncode(TimePrefDone{GoalID: goalID}),
	})
	return buttons
}

// dayPrefButtons renders the weekday keyboard, Monday first.
func dayPrefButtons(goalID int32, selected []time.Weekday) []Button {
	chosen := make(map[time.Weekday]bool, len(selected))
	for _, d := range selected {
		chosen[d] = true
	}
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	buttons := make([]Button, 0, 8)
	for _, day := range order {
		label := dayLabels[day]
		if chosen[day] {
			label = "✅ " + label
		}
		buttons = append(buttons, Button{
			Text:         label,
			CallbackData: mustEncode(DayPrefToggle{GoalID: goalID, Day: day}),
		})
	}
	buttons = append(buttons, Button{
		Text:         "All days are fine",
		CallbackData: mustEncode(DayPrefDone{GoalID: goalID}),
	})
	return buttons
}

// previewText lists the drafted placements before the user confirms.
func previewText(goalTitle string, plan []PlanEntry, stepTitles map[int32]string) string {
	sorted := make([]PlanEntry, len(plan))
	copy(sorted, plan)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PlannedDate != sorted[j].PlannedDate {
			return sorted[i].PlannedDate < sorted[j].PlannedDate
		}
		return sorted[i].PlannedTime < sorted[j].PlannedTime
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Here is the proposed schedule for %q:\n", goalTitle)
	for _, entry := range sorted {
		title := stepTitles[entry.StepID]
		if entry.PlannedTime != "" {
			fmt.Fprintf(&b, "• %s %s — %s\n", entry.PlannedDate, entry.PlannedTime, title)
		} else {
			fmt.Fprintf(&b, "• %s — %s\n", entry.PlannedDate, title)
		}
	}
	b.WriteString("Add these to your calendar?")
	return b.String()
}
