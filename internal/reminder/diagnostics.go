package reminder

import (
	"context"
	"fmt"
	"strings"

	"github.com/SHIN-ko/chuihyang-sub000/internal/clock"
	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
)

type DiagStatus string

const (
	DiagSuccess DiagStatus = "success"
	DiagWarning DiagStatus = "warning"
	DiagError   DiagStatus = "error"
)

// DiagResult is one report row. Rows are regenerated on demand and never
// persisted.
type DiagResult struct {
	Category string
	Status   DiagStatus
	Message  string
	Details  string
	Action   string
}

type DiagSummary struct {
	Success  int
	Warnings int
	Errors   int
}

// Report is the full diagnostics output: rows, a tally, and the deduplicated
// suggested actions in row order.
type Report struct {
	Results []DiagResult
	Summary DiagSummary
	Actions []string
}

// Diagnostics inspects gateway and project state and reports actionable
// warnings. It never mutates anything and is safe to run at any time.
type Diagnostics struct {
	gw  Gateway
	clk clock.Clock
}

func NewDiagnostics(gw Gateway, clk clock.Clock) *Diagnostics {
	return &Diagnostics{gw: gw, clk: clk}
}

// Run executes the checks in sequence: platform capability, permission,
// pending registrations, and per-project date sanity.
func (d *Diagnostics) Run(ctx context.Context, projects []project.Project) Report {
	var results []DiagResult

	results = append(results, d.checkPlatform(ctx))
	results = append(results, d.checkPermission(ctx))
	results = append(results, d.checkRegistrations(ctx, projects)...)
	results = append(results, d.checkProjects(projects)...)

	return buildReport(results)
}

func (d *Diagnostics) checkPlatform(ctx context.Context) DiagResult {
	ar, ok := d.gw.(AvailabilityReporter)
	if !ok {
		return DiagResult{Category: "platform", Status: DiagSuccess, Message: "notification platform present"}
	}
	if err := ar.Available(ctx); err != nil {
		return DiagResult{
			Category: "platform",
			Status:   DiagError,
			Message:  "notification delivery unavailable; scheduling is skipped",
			Details:  err.Error(),
			Action:   "configure a delivery channel",
		}
	}
	return DiagResult{Category: "platform", Status: DiagSuccess, Message: "notification delivery available"}
}

func (d *Diagnostics) checkPermission(ctx context.Context) DiagResult {
	switch st := d.gw.PermissionStatus(ctx); st {
	case PermissionGranted:
		return DiagResult{Category: "permission", Status: DiagSuccess, Message: "notification permission granted"}
	case PermissionDenied:
		return DiagResult{
			Category: "permission",
			Status:   DiagError,
			Message:  "notification permission denied; registrations will fail",
			Action:   "check delivery credentials and chat access",
		}
	default:
		return DiagResult{
			Category: "permission",
			Status:   DiagWarning,
			Message:  "notification permission not determined yet",
			Action:   "check delivery credentials and chat access",
		}
	}
}

func (d *Diagnostics) checkRegistrations(ctx context.Context, projects []project.Project) []DiagResult {
	regs, err := d.gw.ListScheduled(ctx)
	if err != nil {
		return []DiagResult{{
			Category: "registrations",
			Status:   DiagError,
			Message:  "could not list scheduled reminders",
			Details:  err.Error(),
		}}
	}

	now := d.clk.Now()
	future := 0
	for _, r := range regs {
		if r.TriggerAt.After(now) {
			future++
		}
	}

	active := 0
	for _, p := range projects {
		if !p.Completed() {
			active++
		}
	}

	if future == 0 && active > 0 {
		return []DiagResult{{
			Category: "registrations",
			Status:   DiagWarning,
			Message:  "no future reminders are scheduled despite active projects",
			Details:  fmt.Sprintf("%d active project(s), 0 pending reminders", active),
			Action:   "run a reschedule",
		}}
	}
	return []DiagResult{{
		Category: "registrations",
		Status:   DiagSuccess,
		Message:  fmt.Sprintf("%d future reminder(s) scheduled", future),
	}}
}

// checkProjects flags in-progress projects whose expected end date is already
// in the past. The planner deliberately refuses to act on those, so without
// this report row the inconsistency would be invisible.
func (d *Diagnostics) checkProjects(projects []project.Project) []DiagResult {
	today := project.DateOf(d.clk.Now())

	var results []DiagResult
	for _, p := range projects {
		if p.Status != project.StatusInProgress {
			continue
		}
		if today.DaysUntil(p.ExpectedEndDate) < 0 {
			results = append(results, DiagResult{
				Category: "projects",
				Status:   DiagWarning,
				Message:  fmt.Sprintf("project %q is in progress past its expected end date", p.Name),
				Details:  fmt.Sprintf("expected end %s", p.ExpectedEndDate),
				Action:   "update the expected end date or mark the project completed",
			})
		}
	}
	if len(results) == 0 {
		results = append(results, DiagResult{
			Category: "projects",
			Status:   DiagSuccess,
			Message:  "project dates are consistent",
		})
	}
	return results
}

func buildReport(results []DiagResult) Report {
	rep := Report{Results: results}
	seen := map[string]bool{}
	for _, r := range results {
		switch r.Status {
		case DiagSuccess:
			rep.Summary.Success++
		case DiagWarning:
			rep.Summary.Warnings++
		case DiagError:
			rep.Summary.Errors++
		}
		if a := strings.TrimSpace(r.Action); a != "" && !seen[a] {
			seen[a] = true
			rep.Actions = append(rep.Actions, a)
		}
	}
	return rep
}

// Format renders the report as human-readable text for CLI output.
func (r Report) Format() string {
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "[%-7s] %s: %s\n", res.Status, res.Category, res.Message)
		if res.Details != "" {
			fmt.Fprintf(&b, "          %s\n", res.Details)
		}
	}
	fmt.Fprintf(&b, "\n%d ok, %d warning(s), %d error(s)\n",
		r.Summary.Success, r.Summary.Warnings, r.Summary.Errors)
	if len(r.Actions) > 0 {
		b.WriteString("suggested actions:\n")
		for _, a := range r.Actions {
			fmt.Fprintf(&b, "  - %s\n", a)
		}
	}
	return b.String()
}
