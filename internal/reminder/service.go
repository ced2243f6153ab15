package reminder

import (
	"context"
	"errors"
	"fmt"

	"github.com/SHIN-ko/chuihyang-sub000/internal/clock"
	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
	"github.com/SHIN-ko/chuihyang-sub000/pkg/logx"
)

// Service orchestrates planner, quiet hours, resolver, and gateway.
//
// It holds no mutable settings: the caller passes the settings snapshot into
// each operation, so a settings change can never silently alter reminders
// already registered (recomputation is always an explicit reschedule).
type Service struct {
	planner  Planner
	gw       Gateway
	resolver Resolver
	clk      clock.Clock
	log      logx.Logger
}

func NewService(planner Planner, gw Gateway, resolver Resolver, clk clock.Clock, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{planner: planner, gw: gw, resolver: resolver, clk: clk, log: log}
}

// ScheduleForProject replaces the project's registrations with a freshly
// planned set: cancel every possible identifier, plan, adjust for quiet
// hours, resolve copy, register.
//
// Completed projects are a no-op. A failed registration is logged and the
// remaining events are still attempted; the returned error aggregates the
// per-event failures (nil means the full set is registered).
func (s *Service) ScheduleForProject(ctx context.Context, p project.Project, st Settings) error {
	if p.Completed() {
		s.log.Debug("schedule skipped (project completed)", logx.String("project", p.ID))
		return nil
	}

	// Cancel-then-recreate, even when disabled: a schedule pass with
	// notifications off clears whatever was registered before.
	if err := s.CancelForProject(ctx, p.ID); err != nil {
		return err
	}
	if !st.Enabled {
		s.log.Debug("schedule skipped (notifications disabled)", logx.String("project", p.ID))
		return nil
	}

	now := s.clk.Now()
	events := s.planner.Plan(p, now)

	var errs []error
	scheduled := 0
	for _, ev := range events {
		if ev.Kind.IsCompletion() && !st.CompletionReminders {
			continue
		}
		if ev.Kind.IsProgress() && !st.ProgressChecks {
			continue
		}

		at := AdjustQuietHours(ev.At, st.QuietHours)
		msg := s.resolver.Resolve(p.RecipeKey, p.Name, ev.Kind)

		reg := Registration{
			Identifier: ev.Identifier,
			Title:      msg.Title,
			Body:       msg.Body,
			TriggerAt:  at,
			Data: map[string]string{
				"project_id": p.ID,
				"kind":       ev.Kind.Suffix(),
				"sound":      fmt.Sprintf("%t", st.SoundEnabled),
			},
		}
		if err := s.gw.Schedule(ctx, reg); err != nil {
			// One bad registration must not prevent the others.
			s.log.Warn("reminder registration failed",
				logx.String("identifier", ev.Identifier),
				logx.Time("trigger_at", at),
				logx.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", ev.Identifier, err))
			continue
		}
		scheduled++
	}

	s.log.Info("project reminders scheduled",
		logx.String("project", p.ID),
		logx.Int("planned", len(events)),
		logx.Int("scheduled", scheduled))
	return errors.Join(errs...)
}

// CancelForProject cancels the fixed, deterministic identifier set for the
// project. Cancelling identifiers that were never scheduled is a no-op.
func (s *Service) CancelForProject(ctx context.Context, projectID string) error {
	var errs []error
	for _, id := range PossibleIdentifiers(projectID) {
		if err := s.gw.Cancel(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("cancel %s: %w", id, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.log.Warn("reminder cancellation incomplete", logx.String("project", projectID), logx.Err(err))
		return err
	}
	s.log.Debug("project reminders cancelled", logx.String("project", projectID))
	return nil
}

// RescheduleAll runs ScheduleForProject for every non-completed project,
// strictly sequentially so gateway call ordering stays deterministic and one
// project's failure stays bounded to that project. It returns nil only if
// every individual project succeeded.
func (s *Service) RescheduleAll(ctx context.Context, projects []project.Project, st Settings) error {
	var errs []error
	for _, p := range projects {
		if p.Completed() {
			continue
		}
		if err := s.ScheduleForProject(ctx, p, st); err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", p.ID, err))
		}
	}
	s.log.Info("reschedule pass finished",
		logx.Int("projects", len(projects)),
		logx.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// OnStatusChange reacts to a project status transition. Completion cancels
// the project's reminders promptly (the planner's own completed guard would
// only take effect at some future recompute); any other transition is a
// plain reschedule under the new status.
func (s *Service) OnStatusChange(ctx context.Context, p project.Project, newStatus project.Status, st Settings) error {
	p.Status = newStatus
	if newStatus == project.StatusCompleted {
		return s.CancelForProject(ctx, p.ID)
	}
	return s.ScheduleForProject(ctx, p, st)
}
