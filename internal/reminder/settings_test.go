package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettingsStore struct {
	raw []byte
	err error
}

func (m *memSettingsStore) GetSettingsJSON(context.Context) ([]byte, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	return m.raw, m.raw != nil, nil
}

func (m *memSettingsStore) PutSettingsJSON(_ context.Context, raw []byte) error {
	if m.err != nil {
		return m.err
	}
	m.raw = raw
	return nil
}

func TestLoadSettingsDefaults(t *testing.T) {
	t.Parallel()

	// No store at all.
	s, err := LoadSettings(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)

	// Store present, key absent.
	s, err = LoadSettings(context.Background(), &memSettingsStore{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
	assert.True(t, s.Enabled)
	assert.False(t, s.QuietHours.Enabled)
}

func TestLoadSettingsOr(t *testing.T) {
	t.Parallel()
	def := DefaultSettings()
	def.SoundEnabled = false

	s, err := LoadSettingsOr(context.Background(), &memSettingsStore{}, def)
	require.NoError(t, err)
	assert.Equal(t, def, s, "absent key should yield the supplied fallback")

	// A persisted blob always wins over the fallback.
	store := &memSettingsStore{}
	require.NoError(t, SaveSettings(context.Background(), store, DefaultSettings()))
	s, err = LoadSettingsOr(context.Background(), store, def)
	require.NoError(t, err)
	assert.True(t, s.SoundEnabled)
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Parallel()
	store := &memSettingsStore{}

	want := Settings{
		Enabled:             true,
		CompletionReminders: false,
		ProgressChecks:      true,
		SoundEnabled:        false,
		QuietHours:          QuietHours{Enabled: true, StartTime: "21:30", EndTime: "07:00"},
	}
	require.NoError(t, SaveSettings(context.Background(), store, want))

	got, err := LoadSettings(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Stored shape is the stable camelCase contract.
	assert.Contains(t, string(store.raw), `"completionReminders":false`)
	assert.Contains(t, string(store.raw), `"quietHours"`)
}

func TestLoadSettingsCorrupt(t *testing.T) {
	t.Parallel()
	store := &memSettingsStore{raw: []byte(`{not json`)}

	_, err := LoadSettings(context.Background(), store)
	assert.Error(t, err)
}
