package storage

import (
	"context"
	"errors"
	"time"

	"github.com/SHIN-ko/chuihyang-sub000/internal/project"
)

var (
	ErrDisabled = errors.New("storage disabled")
	ErrNotFound = errors.New("not found")
)

// Config configures storage.
//
// If Path is empty, storage is disabled and Open returns (nil, nil).
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means driver default
}

// Registration is a persisted pending notification, keyed by its
// deterministic identifier. Mirrors what the local gateway holds in memory.
type Registration struct {
	Identifier string
	ProjectID  string
	Title      string
	Body       string
	TriggerAt  time.Time
	Sound      bool
}

// DeliveryRecord is one append-only delivery log row.
// Keep it compact and schema-stable.
type DeliveryRecord struct {
	At         time.Time
	Identifier string
	Title      string
	Error      string
}

// Store is the persistence API used by the app, gateway, and engine.
type Store interface {
	// Projects.
	SaveProject(ctx context.Context, p project.Project) error
	GetProject(ctx context.Context, id string) (project.Project, error)
	ListProjects(ctx context.Context) ([]project.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// Notification settings, stored as a single JSON blob.
	// GetSettingsJSON returns ok=false when the key is absent (use defaults).
	GetSettingsJSON(ctx context.Context) (raw []byte, ok bool, err error)
	PutSettingsJSON(ctx context.Context, raw []byte) error

	// Pending gateway registrations.
	PutRegistration(ctx context.Context, r Registration) error
	DeleteRegistration(ctx context.Context, identifier string) error
	ListRegistrations(ctx context.Context) ([]Registration, error)

	// Delivery log.
	AppendDelivery(ctx context.Context, rec DeliveryRecord) error

	Close() error
}
