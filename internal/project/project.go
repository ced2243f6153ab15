// Package project defines the infusion project model shared by the store,
// the reminder engine, and diagnostics.
//
// The reminder engine treats projects as read-only: they are owned and
// mutated by the store (user CRUD), and the engine only plans against their
// lifecycle dates.
package project

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
)

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPlanning:
		return StatusPlanning, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusPaused:
		return StatusPaused, nil
	default:
		return "", fmt.Errorf("unknown project status %q", s)
	}
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Project is one tracked infusion batch.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status Status `json:"status"`

	// StartDate is interpreted as start-of-day, ExpectedEndDate as
	// end-of-day (23:59:59 local) for completion comparisons.
	StartDate       Date  `json:"start_date"`
	ExpectedEndDate Date  `json:"expected_end_date"`
	ActualEndDate   *Date `json:"actual_end_date,omitempty"`

	// RecipeKey selects recipe-specific reminder copy; empty means the
	// generic project-name fallback.
	RecipeKey string `json:"recipe_key,omitempty"`
}

func (p Project) Completed() bool { return p.Status == StatusCompleted }

// TotalDays is the planned duration in whole days. Non-positive values mean
// the dates are misconfigured; callers skip duration-derived reminders.
func (p Project) TotalDays() int { return p.StartDate.DaysUntil(p.ExpectedEndDate) }

func (p Project) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("project id required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("project name required")
	}
	if !p.Status.Valid() {
		return fmt.Errorf("project %s: invalid status %q", p.ID, p.Status)
	}
	if p.StartDate.IsZero() || p.ExpectedEndDate.IsZero() {
		return fmt.Errorf("project %s: start and expected end dates required", p.ID)
	}
	return nil
}
