package reminder

import (
	"context"
	"encoding/json"
	"fmt"
)

// Settings is the user's notification configuration. It is persisted as a
// single JSON blob under one storage key; an absent key means defaults.
//
// Mutating settings does NOT recompute existing schedules. A settings change
// takes effect for future schedule passes only; recomputation is a separate
// explicit action (Service.RescheduleAll).
type Settings struct {
	Enabled             bool       `json:"enabled"`
	CompletionReminders bool       `json:"completionReminders"`
	ProgressChecks      bool       `json:"progressChecks"`
	SoundEnabled        bool       `json:"soundEnabled"`
	QuietHours          QuietHours `json:"quietHours"`
}

// QuietHours is a time-of-day window during which reminders must not fire.
// The window wraps midnight when StartTime > EndTime (e.g. 22:00-08:00).
type QuietHours struct {
	Enabled   bool   `json:"enabled"`
	StartTime string `json:"startTime"` // "HH:mm"
	EndTime   string `json:"endTime"`   // "HH:mm"
}

func DefaultSettings() Settings {
	return Settings{
		Enabled:             true,
		CompletionReminders: true,
		ProgressChecks:      true,
		SoundEnabled:        true,
		QuietHours: QuietHours{
			Enabled:   false,
			StartTime: "22:00",
			EndTime:   "08:00",
		},
	}
}

// SettingsStore is the narrow persistence surface settings need.
type SettingsStore interface {
	GetSettingsJSON(ctx context.Context) (raw []byte, ok bool, err error)
	PutSettingsJSON(ctx context.Context, raw []byte) error
}

// LoadSettings reads the persisted blob, falling back to defaults when the
// key is absent. A corrupt blob is an error, not silently replaced.
func LoadSettings(ctx context.Context, store SettingsStore) (Settings, error) {
	return LoadSettingsOr(ctx, store, DefaultSettings())
}

// LoadSettingsOr is LoadSettings with a caller-supplied fallback, for
// deployments that configure their own defaults.
func LoadSettingsOr(ctx context.Context, store SettingsStore, def Settings) (Settings, error) {
	if store == nil {
		return def, nil
	}
	raw, ok, err := store.GetSettingsJSON(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if !ok {
		return def, nil
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func SaveSettings(ctx context.Context, store SettingsStore, s Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := store.PutSettingsJSON(ctx, raw); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
