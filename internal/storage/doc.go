// Package storage provides the daemon's SQLite persistence layer.
//
// It holds four concerns:
//   - Projects (user CRUD; read-only to the reminder engine)
//   - The notification settings blob (single JSON value under one key)
//   - Pending gateway registrations (so reminders survive process restarts)
//   - Delivery log appends (for diagnostics and operator visibility)
package storage
