// Package config provides configuration management for the remote mouse host.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"remotemouse/internal/logging"
)

// AppName names the per-user config directory
const AppName = "remotemouse"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Settings SettingsConfig `toml:"settings"`
	Devices  DevicesConfig  `toml:"devices"`
}

// ServerConfig holds listener settings. A port change needs a restart.
type ServerConfig struct {
	// Port is the HTTPS listening port
	Port int `toml:"port"`

	// CertFile and KeyFile locate the TLS key pair. Relative paths are
	// resolved against the config directory.
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`
}

// SettingsConfig holds the live tunables
type SettingsConfig struct {
	// MouseSensitivity scales orientation deltas (factor = value / 5)
	MouseSensitivity int `toml:"mouse_sensitivity"`

	// TouchpadSensitivity is the max-speed multiplier for raw touch deltas
	TouchpadSensitivity int `toml:"touchpad_sensitivity"`

	// CooldownSeconds suppresses remote input after physical input
	CooldownSeconds int `toml:"cooldown_seconds"`

	// Startup launches the host on login
	Startup bool `toml:"startup"`

	// ReleaseHotkey drops the current session from the host keyboard (e.g. "Ctrl+Alt+Shift+D")
	ReleaseHotkey string `toml:"release_hotkey"`
}

// DevicesConfig holds the block list
type DevicesConfig struct {
	// BlockedIPs is a comma separated list of origins that are never admitted
	BlockedIPs string `toml:"blocked_ips"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:     4443,
			CertFile: "cert.pem",
			KeyFile:  "key.pem",
		},
		Settings: SettingsConfig{
			MouseSensitivity:    50,
			TouchpadSensitivity: 5,
			CooldownSeconds:     0,
			Startup:             false,
			ReleaseHotkey:       "Ctrl+Alt+Shift+D",
		},
	}
}

// BlockList splits the comma separated block list into trimmed entries
func (c Config) BlockList() []string {
	var out []string
	for _, ip := range strings.Split(c.Devices.BlockedIPs, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			out = append(out, ip)
		}
	}
	return out
}

// Validate checks value ranges
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range 1..65535", c.Server.Port))
	}
	if c.Settings.MouseSensitivity < 1 {
		errs = append(errs, fmt.Errorf("mouse_sensitivity must be at least 1, got %d", c.Settings.MouseSensitivity))
	}
	if c.Settings.TouchpadSensitivity < 1 {
		errs = append(errs, fmt.Errorf("touchpad_sensitivity must be at least 1, got %d", c.Settings.TouchpadSensitivity))
	}
	if c.Settings.CooldownSeconds < 0 {
		errs = append(errs, fmt.Errorf("cooldown_seconds must not be negative, got %d", c.Settings.CooldownSeconds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// ErrInvalid marks configuration values outside their allowed range
var ErrInvalid = errors.New("invalid configuration")

// Manager handles loading, saving and watching configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     Config
	onChanged  []func(Config)
	logger     zerolog.Logger

	// applyMu serialises read-modify-write updates
	applyMu sync.Mutex

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	// lastWritten holds the bytes of our own last Save so the watcher can
	// ignore the event it produces.
	lastWritten []byte
}

// NewManager creates a configuration manager. An empty path selects the
// per-user default location.
func NewManager(path string, logger zerolog.Logger) (*Manager, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
		logger:     logging.Component(logger, "config"),
	}, nil
}

// DefaultPath returns the per-OS configuration file location
func DefaultPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", AppName)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, AppName)
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(dir, AppName)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file is created with defaults.
func (m *Manager) Load() error {
	cfg, err := readFile(m.configPath)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Info().Str("path", m.configPath).Msg("No config file, writing defaults")
		return m.Save()
	}
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	m.notify(cfg)
	return nil
}

func readFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m.config); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	m.logger.Debug().Str("path", m.configPath).Int("bytes", buf.Len()).Msg("Saving configuration")
	m.lastWritten = buf.Bytes()
	return os.WriteFile(m.configPath, buf.Bytes(), 0644)
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set replaces the configuration and notifies listeners. It does not persist.
func (m *Manager) Set(cfg Config) error {
	m.applyMu.Lock()
	defer m.applyMu.Unlock()

	if err := cfg.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	m.notify(cfg)
	return nil
}

// RegisterChangeCallback registers a function called after every config change
func (m *Manager) RegisterChangeCallback(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = append(m.onChanged, fn)
}

func (m *Manager) notify(cfg Config) {
	m.mu.Lock()
	callbacks := append(([]func(Config))(nil), m.onChanged...)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// ResolvePath resolves p relative to the config directory
func (m *Manager) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(m.configPath), p)
}
