package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SettingsChange describes the effect of ApplySettings
type SettingsChange struct {
	PortChanged    bool
	NewPort        int
	StartupChanged bool
}

// View flattens the configuration into the key/value form served to clients
func (c Config) View() map[string]any {
	return map[string]any{
		"port":                 c.Server.Port,
		"mouse_sensitivity":    c.Settings.MouseSensitivity,
		"touchpad_sensitivity": c.Settings.TouchpadSensitivity,
		"cooldown_seconds":     c.Settings.CooldownSeconds,
		"startup":              c.Settings.Startup,
		"release_hotkey":       c.Settings.ReleaseHotkey,
		"blocked_ips":          c.Devices.BlockedIPs,
	}
}

// ApplySettings merges client supplied values into the configuration,
// validates and persists it. Unknown keys are ignored. Listeners are
// notified after a successful save. Listeners must not call back into
// ApplySettings or Set.
func (m *Manager) ApplySettings(values map[string]any) (SettingsChange, error) {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	m.mu.Lock()
	next := m.config
	m.mu.Unlock()
	prev := next

	for key, raw := range values {
		var err error
		switch key {
		case "port":
			next.Server.Port, err = toInt(raw)
		case "mouse_sensitivity":
			next.Settings.MouseSensitivity, err = toInt(raw)
		case "touchpad_sensitivity":
			next.Settings.TouchpadSensitivity, err = toInt(raw)
		case "cooldown_seconds":
			next.Settings.CooldownSeconds, err = toInt(raw)
		case "startup":
			next.Settings.Startup, err = toBool(raw)
		case "release_hotkey":
			next.Settings.ReleaseHotkey, err = toString(raw)
		case "blocked_ips":
			next.Devices.BlockedIPs, err = toString(raw)
		default:
			continue
		}
		if err != nil {
			return SettingsChange{}, fmt.Errorf("%w: %s: %w", ErrInvalid, key, err)
		}
	}

	if err := next.Validate(); err != nil {
		return SettingsChange{}, err
	}

	m.mu.Lock()
	m.config = next
	m.mu.Unlock()
	if err := m.Save(); err != nil {
		return SettingsChange{}, fmt.Errorf("save settings: %w", err)
	}
	m.notify(next)

	return SettingsChange{
		PortChanged:    next.Server.Port != prev.Server.Port,
		NewPort:        next.Server.Port,
		StartupChanged: next.Settings.Startup != prev.Settings.Startup,
	}, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	default:
		return false, fmt.Errorf("unexpected type %T", v)
	}
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("unexpected type %T", v)
	}
}
