// Package reminder implements the notification scheduling engine for
// infusion projects.
//
// # Overview
//
// Given a project's lifecycle dates and the user's notification settings, the
// engine computes the future reminder events for that project, defers any
// that land inside the quiet-hours window, resolves display copy, and
// registers each one with the notification gateway under a deterministic
// identifier. Rescheduling is always cancel-then-recreate: identifiers are a
// pure function of (project, kind), so replacing a project's reminders can
// never leave stale duplicates behind.
//
// # Components
//
//   - Planner: pure computation of candidate events from dates and "now"
//   - AdjustQuietHours: defers an instant out of the do-not-disturb window
//   - Resolver: maps (recipe, kind) to display copy, with a generic fallback
//   - Gateway: the platform scheduling surface (schedule/cancel/list)
//   - Service: per-project orchestration entry points
//   - Diagnostics: read-only health report over gateway and project state
//
// The engine holds no hidden state: every operation is a function of its
// explicit inputs plus the injected Clock and Gateway.
package reminder
