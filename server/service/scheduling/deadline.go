package scheduling

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeDeadline = regexp.MustCompile(`^in\s+(\d+)\s+(day|days|week|weeks|month|months)$`)

// ParseDeadline resolves free-text deadline input to a date. Accepted
// forms: "YYYY-MM-DD", "DD.MM.YYYY", and relative expressions like
// "in 3 days", "in 2 weeks", "in 1 month". Anything else is a
// ErrParseFailure and the dialog stays where it is.
func ParseDeadline(text string, now time.Time) (time.Time, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return time.Time{}, fmt.Errorf("%w: empty deadline", ErrParseFailure)
	}

	for _, layout := range []string{"2006-01-02", "02.01.2006"} {
		if t, err := time.ParseInLocation(layout, text, now.Location()); err == nil {
			return t, nil
		}
	}

	// Local midnight, not Truncate: 24h truncation is epoch-aligned and
	// lands on the wrong date east of UTC.
	base := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if m := relativeDeadline.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return time.Time{}, fmt.Errorf("%w: deadline %q", ErrParseFailure, text)
		}
		switch {
		case strings.HasPrefix(m[2], "day"):
			return base.AddDate(0, 0, n), nil
		case strings.HasPrefix(m[2], "week"):
			return base.AddDate(0, 0, n*7), nil
		default:
			return base.AddDate(0, n, 0), nil
		}
	}

	switch text {
	case "tomorrow":
		return base.AddDate(0, 0, 1), nil
	case "next week":
		return base.AddDate(0, 0, 7), nil
	}

	return time.Time{}, fmt.Errorf("%w: deadline %q", ErrParseFailure, text)
}
