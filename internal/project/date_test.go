package project

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2026-03-01", want: Date{2026, time.March, 1}},
		{in: " 2026-12-31 ", want: Date{2026, time.December, 31}},
		{in: "2026-3-1", wantErr: true},
		{in: "01-03-2026", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestAddDays(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   Date
		n    int
		want Date
	}{
		{Date{2026, time.March, 1}, 30, Date{2026, time.March, 31}},
		{Date{2026, time.February, 27}, 2, Date{2026, time.March, 1}},
		{Date{2026, time.December, 31}, 1, Date{2027, time.January, 1}},
		{Date{2026, time.March, 1}, -1, Date{2026, time.February, 28}},
		{Date{2024, time.February, 28}, 1, Date{2024, time.February, 29}},
	}
	for _, tc := range cases {
		if got := tc.in.AddDays(tc.n); got != tc.want {
			t.Errorf("%v.AddDays(%d) = %v, want %v", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestDaysUntil(t *testing.T) {
	t.Parallel()
	a := Date{2026, time.March, 1}
	if got := a.DaysUntil(Date{2026, time.March, 31}); got != 30 {
		t.Errorf("DaysUntil = %d, want 30", got)
	}
	if got := a.DaysUntil(a); got != 0 {
		t.Errorf("DaysUntil self = %d, want 0", got)
	}
	if got := a.DaysUntil(Date{2026, time.February, 1}); got != -28 {
		t.Errorf("DaysUntil past = %d, want -28", got)
	}
	// Whole-day semantics are independent of any time-of-day.
	if got := DateOf(time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)).DaysUntil(Date{2026, time.March, 2}); got != 1 {
		t.Errorf("DaysUntil late evening = %d, want 1", got)
	}
}

func TestDateInstants(t *testing.T) {
	t.Parallel()
	d := Date{2026, time.March, 5}

	at := d.At(12, 30, time.UTC)
	if want := time.Date(2026, 3, 5, 12, 30, 0, 0, time.UTC); !at.Equal(want) {
		t.Errorf("At = %v, want %v", at, want)
	}
	end := d.EndOfDay(time.UTC)
	if want := time.Date(2026, 3, 5, 23, 59, 59, 0, time.UTC); !end.Equal(want) {
		t.Errorf("EndOfDay = %v, want %v", end, want)
	}
	if !d.StartOfDay(time.UTC).Before(end) {
		t.Error("StartOfDay not before EndOfDay")
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()
	d := Date{2026, time.March, 5}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2026-03-05"` {
		t.Errorf("marshal = %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}
	var zero Date
	if err := json.Unmarshal([]byte(`null`), &zero); err != nil {
		t.Fatal(err)
	}
	if !zero.IsZero() {
		t.Errorf("null should decode to zero date, got %v", zero)
	}
}
