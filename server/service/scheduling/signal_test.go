package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCallbackRoundTrip(t *testing.T) {
	signals := []Signal{
		ScheduleAccept{GoalID: 7},
		ScheduleDecline{GoalID: 7},
		TimePrefToggle{GoalID: 7, Bucket: BucketAfternoon},
		TimePrefDone{GoalID: 7},
		DayPrefToggle{GoalID: 7, Day: time.Saturday},
		DayPrefDone{GoalID: 7},
		ScheduleConfirm{GoalID: 7},
		ScheduleCancel{GoalID: 7},
	}
	for _, sig := range signals {
		data, err := EncodeCallback(sig)
		require.NoError(t, err)
		decoded, err := DecodeCallback(data)
		require.NoError(t, err)
		require.Equal(t, sig, decoded, "round trip of %q", data)
	}
}

func TestEncodeCallbackWireFormat(t *testing.T) {
	tests := []struct {
		sig  Signal
		want string
	}{
		{ScheduleAccept{GoalID: 12}, "schedule_accept:12"},
		{TimePrefToggle{GoalID: 12, Bucket: BucketMorning}, "time_pref:morning:12"},
		{TimePrefDone{GoalID: 12}, "time_pref_done:12"},
		{DayPrefToggle{GoalID: 12, Day: time.Monday}, "day_pref:1:12"},
		{DayPrefDone{GoalID: 12}, "day_pref_done:12"},
		{ScheduleConfirm{GoalID: 12}, "schedule_confirm:12"},
	}
	for _, tt := range tests {
		got, err := EncodeCallback(tt.sig)
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestEncodeCallbackRejectsIntentSignals(t *testing.T) {
	_, err := EncodeCallback(GoalCreated{GoalID: 1})
	require.Error(t, err)
	_, err = EncodeCallback(DeadlineProvided{Deadline: time.Now()})
	require.Error(t, err)
}

func TestDecodeCallbackRejectsMalformed(t *testing.T) {
	for _, data := range []string{
		"",
		"bogus_action:1",
		"schedule_accept",
		"schedule_accept:1:2",
		"schedule_accept:notanumber",
		"time_pref:1",
		"time_pref:midnight:1",
		"day_pref:7:1",
		"day_pref:mon:1",
	} {
		_, err := DecodeCallback(data)
		require.Error(t, err, "data %q", data)
	}
}
