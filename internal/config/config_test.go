package config

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(filepath.Join(t.TempDir(), "config.toml"), zerolog.Nop())
	require.NoError(t, err)
	return m
}

func TestLoadWritesDefaults(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load())

	assert.FileExists(t, m.Path())
	cfg := m.Get()
	assert.Equal(t, 4443, cfg.Server.Port)
	assert.Equal(t, 50, cfg.Settings.MouseSensitivity)
	assert.Equal(t, 5, cfg.Settings.TouchpadSensitivity)
	assert.Equal(t, 0, cfg.Settings.CooldownSeconds)
	assert.False(t, cfg.Settings.Startup)
	assert.Empty(t, cfg.BlockList())
}

func TestLoadReadsFileAndKeepsDefaultsForMissingKeys(t *testing.T) {
	m := newTestManager(t)
	content := `
[server]
port = 5000

[settings]
mouse_sensitivity = 20
cooldown_seconds = 3

[devices]
blocked_ips = "10.0.0.5, 10.0.0.6 ,"
`
	require.NoError(t, os.WriteFile(m.Path(), []byte(content), 0644))
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Settings.MouseSensitivity)
	assert.Equal(t, 5, cfg.Settings.TouchpadSensitivity)
	assert.Equal(t, 3, cfg.Settings.CooldownSeconds)
	assert.Equal(t, []string{"10.0.0.5", "10.0.0.6"}, cfg.BlockList())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, os.WriteFile(m.Path(), []byte("[settings]\ncooldown_seconds = -1\n"), 0644))
	assert.ErrorIs(t, m.Load(), ErrInvalid)
}

func TestSaveRoundTrip(t *testing.T) {
	m := newTestManager(t)
	cfg := DefaultConfig()
	cfg.Settings.ReleaseHotkey = "Ctrl+Alt+R"
	cfg.Devices.BlockedIPs = "192.168.1.9"
	require.NoError(t, m.Set(cfg))
	require.NoError(t, m.Save())

	other, err := NewManager(m.Path(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, other.Load())
	assert.Equal(t, cfg, other.Get())
}

func TestApplySettingsLiveChange(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load())

	var seen Config
	m.RegisterChangeCallback(func(c Config) { seen = c })

	change, err := m.ApplySettings(map[string]any{
		"mouse_sensitivity": float64(80),
		"cooldown_seconds":  "2",
		"startup":           "True",
		"unknown_key":       "ignored",
	})
	require.NoError(t, err)
	assert.False(t, change.PortChanged)
	assert.True(t, change.StartupChanged)
	assert.Equal(t, 80, seen.Settings.MouseSensitivity)
	assert.Equal(t, 2, seen.Settings.CooldownSeconds)
	assert.True(t, seen.Settings.Startup)

	// persisted
	other, err := NewManager(m.Path(), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, other.Load())
	assert.Equal(t, 80, other.Get().Settings.MouseSensitivity)
}

func TestApplySettingsConcurrentSavesKeepBothChanges(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load())

	for i := 1; i <= 50; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := m.ApplySettings(map[string]any{"startup": i%2 == 0})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := m.ApplySettings(map[string]any{"mouse_sensitivity": float64(i)})
			assert.NoError(t, err)
		}()
		wg.Wait()

		cfg := m.Get()
		require.Equal(t, i%2 == 0, cfg.Settings.Startup, "iteration %d", i)
		require.Equal(t, i, cfg.Settings.MouseSensitivity, "iteration %d", i)
	}
}

func TestApplySettingsPortChange(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load())

	change, err := m.ApplySettings(map[string]any{"port": float64(5555)})
	require.NoError(t, err)
	assert.True(t, change.PortChanged)
	assert.Equal(t, 5555, change.NewPort)

	change, err = m.ApplySettings(map[string]any{"port": float64(5555)})
	require.NoError(t, err)
	assert.False(t, change.PortChanged)
}

func TestApplySettingsValidation(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load())

	tests := []struct {
		name   string
		values map[string]any
	}{
		{"port too large", map[string]any{"port": float64(70000)}},
		{"zero sensitivity", map[string]any{"mouse_sensitivity": float64(0)}},
		{"negative cooldown", map[string]any{"cooldown_seconds": float64(-4)}},
		{"fractional", map[string]any{"touchpad_sensitivity": 2.5}},
		{"not a number", map[string]any{"port": "abc"}},
		{"wrong type", map[string]any{"startup": float64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ApplySettings(tt.values)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
	assert.Equal(t, DefaultConfig(), m.Get(), "rejected settings must not be applied")
}

func TestView(t *testing.T) {
	view := DefaultConfig().View()
	assert.Equal(t, 4443, view["port"])
	assert.Equal(t, 50, view["mouse_sensitivity"])
	assert.Equal(t, "", view["blocked_ips"])
}

func TestResolvePath(t *testing.T) {
	m := newTestManager(t)
	dir := filepath.Dir(m.Path())
	assert.Equal(t, filepath.Join(dir, "cert.pem"), m.ResolvePath("cert.pem"))
	abs := filepath.Join(t.TempDir(), "key.pem")
	assert.Equal(t, abs, m.ResolvePath(abs))
}

func TestWatchReloadsExternalEdits(t *testing.T) {
	m := newTestManager(t)
	require.NoError(t, m.Load())
	require.NoError(t, m.Watch())
	defer m.Close()

	var sens atomic.Int64
	m.RegisterChangeCallback(func(c Config) { sens.Store(int64(c.Settings.MouseSensitivity)) })

	require.NoError(t, os.WriteFile(m.Path(), []byte("[settings]\nmouse_sensitivity = 33\n"), 0644))

	assert.Eventually(t, func() bool { return sens.Load() == 33 }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, 33, m.Get().Settings.MouseSensitivity)
}
