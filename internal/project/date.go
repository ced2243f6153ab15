package project

import (
	"fmt"
	"strings"
	"time"
)

// Date is a local calendar day without a time-of-day component.
//
// Project lifecycle dates are calendar days, not instants: "expected end
// 2026-09-14" means the whole local day. Keeping a dedicated type forces every
// conversion to an instant through an explicit hour-of-day + location, instead
// of error-prone millisecond arithmetic on timestamps.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf truncates an instant to its calendar day in the instant's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays returns the calendar day n days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// DaysUntil returns the whole-day difference o - d.
// Computed on UTC midnights so DST transitions cannot skew the count.
func (d Date) DaysUntil(o Date) int {
	a := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
	b := time.Date(o.Year, o.Month, o.Day, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

func (d Date) Before(o Date) bool { return d.DaysUntil(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

// At returns the instant at hour:min on this calendar day in loc.
func (d Date) At(hour, min int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, hour, min, 0, 0, loc)
}

// StartOfDay returns local midnight for this day.
func (d Date) StartOfDay(loc *time.Location) time.Time { return d.At(0, 0, loc) }

// EndOfDay returns 23:59:59 local for this day. Completion comparisons treat
// the expected end date as running to the end of that day.
func (d Date) EndOfDay(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 23, 59, 59, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	p, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}
