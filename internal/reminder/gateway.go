package reminder

import (
	"context"
	"time"
)

// PermissionStatus mirrors the platform's notification permission state.
type PermissionStatus int

const (
	PermissionUndetermined PermissionStatus = iota
	PermissionGranted
	PermissionDenied
)

func (p PermissionStatus) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "undetermined"
	}
}

// Registration is one pending platform notification.
type Registration struct {
	Identifier string
	Title      string
	Body       string
	TriggerAt  time.Time
	Data       map[string]string
}

// Gateway is the platform notification service the engine schedules against.
//
// Contract:
//   - Schedule rejects triggers inside the platform's minimum lead time.
//   - Schedule with an existing identifier replaces the prior registration.
//   - Cancel of an unknown identifier is a no-op, not an error.
//   - Registrations are owned by the platform and survive engine restarts.
type Gateway interface {
	Schedule(ctx context.Context, r Registration) error
	Cancel(ctx context.Context, identifier string) error
	CancelAll(ctx context.Context) error
	ListScheduled(ctx context.Context) ([]Registration, error)
	PermissionStatus(ctx context.Context) PermissionStatus
}

// AvailabilityReporter is an optional Gateway extension. Diagnostics uses it
// for the platform capability check; gateways that cannot deliver at all
// (no sink configured, simulator-like environments) report an error here.
type AvailabilityReporter interface {
	Available(ctx context.Context) error
}
