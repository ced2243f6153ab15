package reminder

import (
	"fmt"
	"strings"
	"time"
)

// AdjustQuietHours defers an instant that falls inside the quiet-hours
// window to the window's end time. The result is always >= the input: if
// moving to the end time on the same calendar day would go backward (wrapped
// window, instant after midnight start), it rolls forward one day.
//
// Instants outside the window, and all instants when quiet hours are
// disabled or malformed, pass through unchanged.
func AdjustQuietHours(t time.Time, qh QuietHours) time.Time {
	if !qh.Enabled {
		return t
	}
	sh, sm, err := parseHHMM(qh.StartTime)
	if err != nil {
		return t
	}
	eh, em, err := parseHHMM(qh.EndTime)
	if err != nil {
		return t
	}

	start := sh*60 + sm
	end := eh*60 + em
	minute := t.Hour()*60 + t.Minute()

	var inside bool
	if start > end {
		// Window wraps midnight, e.g. 22:00-08:00.
		inside = minute >= start || minute <= end
	} else {
		inside = minute >= start && minute <= end
	}
	if !inside {
		return t
	}

	adjusted := time.Date(t.Year(), t.Month(), t.Day(), eh, em, 0, 0, t.Location())
	if !adjusted.After(t) {
		adjusted = adjusted.AddDate(0, 0, 1)
	}
	return adjusted
}

func parseHHMM(s string) (hour, min int, err error) {
	s = strings.TrimSpace(s)
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid HH:mm value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("HH:mm value %q out of range", s)
	}
	return h, m, nil
}
