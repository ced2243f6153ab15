package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
)

func mustDate(t *testing.T, s string) project.Date {
	t.Helper()
	d, err := project.ParseDate(s)
	require.NoError(t, err)
	return d
}

func testProject(t *testing.T, start, end string) project.Project {
	t.Helper()
	return project.Project{
		ID:              "p1",
		Name:            "Plum wine batch 3",
		Status:          project.StatusInProgress,
		StartDate:       mustDate(t, start),
		ExpectedEndDate: mustDate(t, end),
	}
}

func kindsOf(events []Event) []Kind {
	out := make([]Kind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestPlanLongProject(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	p := testProject(t, "2026-03-01", "2026-03-31")
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	events := pl.Plan(p, now)
	require.Len(t, events, 4)
	assert.Equal(t, []Kind{CompletionDay, OneDayBefore, ThreeDaysBefore, MidpointCheck}, kindsOf(events))

	byKind := map[Kind]Event{}
	for _, ev := range events {
		byKind[ev.Kind] = ev
	}
	assert.Equal(t, time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC), byKind[CompletionDay].At)
	assert.Equal(t, time.Date(2026, 3, 30, 18, 0, 0, 0, time.UTC), byKind[OneDayBefore].At)
	assert.Equal(t, time.Date(2026, 3, 28, 10, 0, 0, 0, time.UTC), byKind[ThreeDaysBefore].At)
	// 30-day duration: midpoint lands on start+15.
	assert.Equal(t, time.Date(2026, 3, 16, 15, 0, 0, 0, time.UTC), byKind[MidpointCheck].At)

	assert.Equal(t, "p1-completion", byKind[CompletionDay].Identifier)
	assert.Equal(t, "p1-midpoint", byKind[MidpointCheck].Identifier)
}

func TestPlanShortProjectDailyChecks(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	p := testProject(t, "2026-03-01", "2026-03-05")
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	events := pl.Plan(p, now)

	ids := map[string]bool{}
	for _, ev := range events {
		ids[ev.Identifier] = true
	}
	// Exactly 4 days out still includes the three-days-before reminder.
	assert.True(t, ids["p1-3days"], "threeDaysBefore expected at daysUntilCompletion == 4")
	assert.True(t, ids["p1-daily-1"])
	assert.True(t, ids["p1-daily-2"])
	assert.True(t, ids["p1-daily-3"])
	assert.False(t, ids["p1-daily-4"], "daily checks are capped at 3")

	for _, ev := range events {
		if ev.Kind.IsDaily() {
			assert.Equal(t, 9, ev.At.Hour())
		}
	}
}

func TestPlanThreeDayBoundary(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	// Exactly 3 days: included (fires later today at 10:00).
	events := pl.Plan(testProject(t, "2026-02-20", "2026-03-04"), now)
	ids := map[string]bool{}
	for _, ev := range events {
		ids[ev.Identifier] = true
	}
	assert.True(t, ids["p1-3days"])

	// 2 days: excluded.
	events = pl.Plan(testProject(t, "2026-02-20", "2026-03-03"), now)
	for _, ev := range events {
		assert.NotEqual(t, ThreeDaysBefore, ev.Kind)
	}
}

func TestPlanDeadDeadline(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	p := testProject(t, "2026-01-01", "2026-02-01")
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	assert.Empty(t, pl.Plan(p, now))
}

func TestPlanCompletedProject(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	p := testProject(t, "2026-03-01", "2026-03-31")
	p.Status = project.StatusCompleted
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	assert.Empty(t, pl.Plan(p, now))
}

func TestPlanMisconfiguredDuration(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	// End before start: non-positive duration skips the midpoint entirely.
	p := testProject(t, "2026-03-10", "2026-03-04")
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for _, ev := range pl.Plan(p, now) {
		assert.NotEqual(t, MidpointCheck, ev.Kind)
	}
}

func TestPlanMinLeadGate(t *testing.T) {
	t.Parallel()
	pl := NewPlanner(time.UTC)
	p := testProject(t, "2026-03-01", "2026-03-05")
	// Two minutes before the completion reminder would fire: inside the
	// 5-minute lead window, so it must be dropped.
	now := time.Date(2026, 3, 5, 11, 58, 0, 0, time.UTC)

	for _, ev := range pl.Plan(p, now) {
		assert.NotEqual(t, CompletionDay, ev.Kind)
	}
}
