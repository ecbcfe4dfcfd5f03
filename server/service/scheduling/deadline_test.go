package scheduling

import (
	"errors"
	"testing"
	"time"
)

func TestParseDeadline(t *testing.T) {
	now := time.Date(2025, 11, 3, 15, 30, 0, 0, time.UTC)
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"2025-11-10", time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), false},
		{"10.11.2025", time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), false},
		{"in 3 days", time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), false},
		{"in 1 day", time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC), false},
		{"in 2 weeks", time.Date(2025, 11, 17, 0, 0, 0, 0, time.UTC), false},
		{"in 1 month", time.Date(2025, 12, 3, 0, 0, 0, 0, time.UTC), false},
		{"tomorrow", time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC), false},
		{"next week", time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), false},
		{"  In 3 Days  ", time.Date(2025, 11, 6, 0, 0, 0, 0, time.UTC), false},
		{"", time.Time{}, true},
		{"whenever", time.Time{}, true},
		{"in 0 days", time.Time{}, true},
		{"32.13.2025", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeadline(tt.input, now)
			if tt.wantErr {
				if !errors.Is(err, ErrParseFailure) {
					t.Fatalf("ParseDeadline(%q) err = %v, want ErrParseFailure", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDeadline(%q) err = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseDeadline(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

// Relative forms must count from local midnight. Epoch-aligned 24h
// truncation lands on yesterday's date east of UTC in the early hours.
func TestParseDeadlineNonUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2025, 11, 4, 1, 0, 0, 0, loc)
	tests := []struct {
		input string
		want  time.Time
	}{
		{"tomorrow", time.Date(2025, 11, 5, 0, 0, 0, 0, loc)},
		{"in 1 day", time.Date(2025, 11, 5, 0, 0, 0, 0, loc)},
		{"next week", time.Date(2025, 11, 11, 0, 0, 0, 0, loc)},
		{"2025-11-10", time.Date(2025, 11, 10, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDeadline(tt.input, now)
			if err != nil {
				t.Fatalf("ParseDeadline(%q) err = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("ParseDeadline(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}
