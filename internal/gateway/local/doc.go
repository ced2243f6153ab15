// Package local implements the reminder.Gateway contract on the local
// device: a registry of one-shot timers backed by the SQLite store, so
// pending reminders survive process restarts.
//
// # Lifecycle
//
// Start() rebuilds runtime timers from the persisted registrations (rows
// whose trigger already passed are dropped, not fired late). Stop() stops the
// timers but keeps the rows; the next Start() resumes them.
//
// # Firing
//
// When a timer fires, the registration is removed first (prevents double
// delivery on races with Schedule/Cancel), then handed to the delivery sink
// under a rate limiter, and the outcome is published on the event bus.
package local
