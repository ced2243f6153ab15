package reminder

import (
	"time"

	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
)

// MinLead is the platform-enforced minimum scheduling lead time. Candidates
// not strictly after now+MinLead are dropped at planning time.
const MinLead = 5 * time.Minute

// Wall-clock hours for each reminder kind.
const (
	completionHour = 12
	oneDayHour     = 18
	threeDaysHour  = 10
	midpointHour   = 15
	dailyHour      = 9
)

// Planner computes candidate reminder events from project dates and the
// current time. It is a pure function of its inputs: no gateway, no settings,
// no stored state.
type Planner struct {
	loc *time.Location
}

func NewPlanner(loc *time.Location) Planner {
	if loc == nil {
		loc = time.Local
	}
	return Planner{loc: loc}
}

// Plan returns the ordered candidate events for p as of now.
//
// Rules, each independently gated:
//  1. completion day at 12:00 when the end date has not passed
//  2. one day before at 18:00 when at least one day remains
//  3. three days before at 10:00 when at least three days remain
//  4. midpoint check at 15:00 when the project duration is positive
//  5. daily checks at 09:00 for short-horizon projects (1..7 days left),
//     at most three
//
// A project whose expected end date is already behind now yields no events
// at all: never notify about a dead deadline. Completed projects likewise.
func (pl Planner) Plan(p project.Project, now time.Time) []Event {
	if p.Completed() {
		return nil
	}

	now = now.In(pl.loc)
	today := project.DateOf(now)
	end := p.ExpectedEndDate
	daysLeft := today.DaysUntil(end)
	if daysLeft < 0 {
		return nil
	}

	cutoff := now.Add(MinLead)
	endOfEnd := end.EndOfDay(pl.loc)

	var events []Event
	add := func(k Kind, at time.Time) {
		if at.After(cutoff) {
			events = append(events, Event{Kind: k, At: at, Identifier: k.Identifier(p.ID)})
		}
	}

	add(CompletionDay, end.At(completionHour, 0, pl.loc))
	if daysLeft >= 1 {
		add(OneDayBefore, end.AddDays(-1).At(oneDayHour, 0, pl.loc))
	}
	if daysLeft >= 3 {
		add(ThreeDaysBefore, end.AddDays(-3).At(threeDaysHour, 0, pl.loc))
	}

	// Midpoint is skipped entirely for non-positive durations (misconfigured
	// dates are a policy decision, not an error).
	if total := p.TotalDays(); total > 0 {
		at := p.StartDate.AddDays(total / 2).At(midpointHour, 0, pl.loc)
		if at.Before(endOfEnd) && at.After(now) {
			add(MidpointCheck, at)
		}
	}

	if daysLeft > 0 && daysLeft <= dailyWindowDays {
		n := daysLeft
		if n > maxDailyChecks {
			n = maxDailyChecks
		}
		for i := 1; i <= n; i++ {
			at := today.AddDays(i).At(dailyHour, 0, pl.loc)
			if at.Before(endOfEnd) {
				add(DailyCheck(i), at)
			}
		}
	}

	return events
}
