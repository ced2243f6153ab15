package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the daemon configuration file (JSON or YAML).
//
// All duration fields are Go duration strings (e.g. "500ms", "10s", "6h").
type Config struct {
	Logging  LoggingConfig  `json:"logging"`
	Storage  StorageConfig  `json:"storage"`
	Delivery DeliveryConfig `json:"delivery"`
	Daemon   DaemonConfig   `json:"daemon"`

	// Notifications supplies the defaults used when the store has no
	// persisted settings blob yet. Runtime settings live in the store.
	Notifications *NotificationDefaults `json:"notifications,omitempty"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console bool       `json:"console"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig controls the SQLite persistence layer.
//
// Example:
//
//	"storage": { "path": "./chuihyang.db", "busy_timeout": "2s" }
type StorageConfig struct {
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// DeliveryConfig selects where fired reminders are sent.
//
// Channel values:
//   - "telegram": send via a Telegram bot to a fixed chat
//   - "console": log-only delivery (development)
//
// MinLead is the platform-enforced minimum scheduling lead time; triggers
// closer than this are rejected by the gateway. Defaults to "5m".
type DeliveryConfig struct {
	Channel    string         `json:"channel"`
	Telegram   TelegramConfig `json:"telegram,omitempty"`
	RatePerSec int            `json:"rate_per_sec,omitempty"`
	MinLead    string         `json:"min_lead,omitempty"`
}

type TelegramConfig struct {
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
}

// DaemonConfig controls the background sweep jobs.
//
// ResyncAt is a local "HH:mm" wall time at which all non-completed projects
// are rescheduled daily. DiagnosticsEvery is how often the diagnostics report
// is run and logged ("0s" disables it).
type DaemonConfig struct {
	Timezone         string `json:"timezone,omitempty"` // IANA TZ, e.g. "Asia/Seoul"
	ResyncAt         string `json:"resync_at,omitempty"`
	DiagnosticsEvery string `json:"diagnostics_every,omitempty"`
}

// NotificationDefaults mirrors the persisted settings blob shape.
type NotificationDefaults struct {
	Enabled             bool             `json:"enabled"`
	CompletionReminders bool             `json:"completion_reminders"`
	ProgressChecks      bool             `json:"progress_checks"`
	SoundEnabled        bool             `json:"sound_enabled"`
	QuietHours          QuietHoursConfig `json:"quiet_hours"`
}

type QuietHoursConfig struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"start_time,omitempty"` // "HH:mm"
	EndTime   string `json:"end_time,omitempty"`   // "HH:mm"
}

// Validate performs cross-field checks that the strict decoder cannot.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch strings.ToLower(strings.TrimSpace(c.Delivery.Channel)) {
	case "", "console":
	case "telegram":
		if strings.TrimSpace(c.Delivery.Telegram.Token) == "" {
			return errors.New("delivery.telegram.token required for telegram channel")
		}
		if c.Delivery.Telegram.ChatID == 0 {
			return errors.New("delivery.telegram.chat_id required for telegram channel")
		}
	default:
		return fmt.Errorf("delivery.channel: unknown channel %q", c.Delivery.Channel)
	}

	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}
	if _, err := ParseDurationField("delivery.min_lead", c.Delivery.MinLead); err != nil {
		return err
	}
	if _, err := ParseDurationField("daemon.diagnostics_every", c.Daemon.DiagnosticsEvery); err != nil {
		return err
	}
	if at := strings.TrimSpace(c.Daemon.ResyncAt); at != "" {
		if _, _, err := ParseHHMM(at); err != nil {
			return fmt.Errorf("daemon.resync_at: %w", err)
		}
	}
	if tz := strings.TrimSpace(c.Daemon.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("daemon.timezone: %w", err)
		}
	}
	if n := c.Notifications; n != nil && n.QuietHours.Enabled {
		if _, _, err := ParseHHMM(n.QuietHours.StartTime); err != nil {
			return fmt.Errorf("notifications.quiet_hours.start_time: %w", err)
		}
		if _, _, err := ParseHHMM(n.QuietHours.EndTime); err != nil {
			return fmt.Errorf("notifications.quiet_hours.end_time: %w", err)
		}
	}
	return nil
}

// ParseHHMM parses a "HH:mm" wall-clock string.
func ParseHHMM(s string) (hour, min int, err error) {
	s = strings.TrimSpace(s)
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, 0, fmt.Errorf("invalid HH:mm value %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("HH:mm value %q out of range", s)
	}
	return h, m, nil
}
