package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validJSON = `{
  "logging": {"level": "debug", "console": true},
  "storage": {"path": "./test.db", "busy_timeout": "2s"},
  "delivery": {"channel": "console", "min_lead": "5m"},
  "daemon": {"timezone": "UTC", "resync_at": "04:00", "diagnostics_every": "6h"}
}`

func TestParseJSON(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.json", validJSON))

	cfg, err := m.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Delivery.Channel != "console" {
		t.Errorf("channel = %q", cfg.Delivery.Channel)
	}
	if got := m.Get(); got != cfg {
		t.Error("Get should return the committed config")
	}
}

func TestParseYAML(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.yaml", `
logging:
  level: info
  console: true
storage:
  path: ./test.db
delivery:
  channel: telegram
  telegram:
    token: "123:abc"
    chat_id: 42
daemon:
  resync_at: "04:30"
`))
	cfg, err := m.Parse()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Delivery.Telegram.ChatID != 42 {
		t.Errorf("chat_id = %d", cfg.Delivery.Telegram.ChatID)
	}
	if cfg.Daemon.ResyncAt != "04:30" {
		t.Errorf("resync_at = %q", cfg.Daemon.ResyncAt)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.json", `{"loging": {"level": "debug"}}`))
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParseRejectsTrailingData(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.json", `{"logging": {"console": true}} {"extra": 1}`))
	if _, err := m.Parse(); err == nil {
		t.Fatal("expected error for trailing data")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "console channel needs nothing",
			mutate: func(c *Config) { c.Delivery.Channel = "console" },
		},
		{
			name:   "empty channel allowed",
			mutate: func(c *Config) { c.Delivery.Channel = "" },
		},
		{
			name:    "telegram without token",
			mutate:  func(c *Config) { c.Delivery.Channel = "telegram" },
			wantErr: "token",
		},
		{
			name: "telegram without chat id",
			mutate: func(c *Config) {
				c.Delivery.Channel = "telegram"
				c.Delivery.Telegram.Token = "123:abc"
			},
			wantErr: "chat_id",
		},
		{
			name:    "unknown channel",
			mutate:  func(c *Config) { c.Delivery.Channel = "pigeon" },
			wantErr: "unknown channel",
		},
		{
			name:    "bad duration",
			mutate:  func(c *Config) { c.Delivery.MinLead = "five minutes" },
			wantErr: "min_lead",
		},
		{
			name:    "bad resync time",
			mutate:  func(c *Config) { c.Daemon.ResyncAt = "25:00" },
			wantErr: "resync_at",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Daemon.Timezone = "Mars/Olympus" },
			wantErr: "timezone",
		},
		{
			name: "quiet hours validated when enabled",
			mutate: func(c *Config) {
				c.Notifications = &NotificationDefaults{
					QuietHours: QuietHoursConfig{Enabled: true, StartTime: "22:00", EndTime: "8am"},
				}
			},
			wantErr: "end_time",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := &Config{}
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", " 10s "); err != nil || d != 10*time.Second {
		t.Errorf("got %v, %v", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Errorf("empty should be zero, got %v, %v", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Error("negative should error")
	}
	if d, err := ParseDurationOrDefault("x", "", time.Minute); err != nil || d != time.Minute {
		t.Errorf("default not applied: %v, %v", d, err)
	}
}

func TestParseHHMM(t *testing.T) {
	t.Parallel()
	h, m, err := ParseHHMM("04:30")
	if err != nil || h != 4 || m != 30 {
		t.Fatalf("got %d:%d, %v", h, m, err)
	}
	for _, bad := range []string{"24:00", "12:60", "noon", ""} {
		if _, _, err := ParseHHMM(bad); err == nil {
			t.Errorf("ParseHHMM(%q): expected error", bad)
		}
	}
}

func TestSubscribePublish(t *testing.T) {
	t.Parallel()
	m := NewManager(writeConfig(t, "config.json", validJSON))
	if _, err := m.Load(); err != nil {
		t.Fatal(err)
	}

	ch := m.Subscribe(1)
	defer m.Unsubscribe(ch)

	next := &Config{Logging: LoggingConfig{Level: "warn"}}
	m.Commit(next)
	m.publish(next)

	select {
	case got := <-ch:
		if got.Logging.Level != "warn" {
			t.Errorf("level = %q", got.Logging.Level)
		}
	case <-time.After(time.Second):
		t.Fatal("no config published")
	}
}
