package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the config file when it is edited on disk and notifies
// listeners. Writes made by Save are ignored.
func (m *Manager) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	// Editors often replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.watcher = watcher
	m.cancel = cancel
	m.mu.Unlock()

	go m.watchLoop(ctx, watcher)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(m.configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, m.reload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("Config watcher error")
		}
	}
}

func (m *Manager) reload() {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Config reload failed")
		return
	}

	m.mu.Lock()
	own := bytes.Equal(data, m.lastWritten)
	prevPort := m.config.Server.Port
	m.mu.Unlock()
	if own {
		return
	}

	cfg, err := readFile(m.configPath)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Ignoring invalid config edit")
		return
	}

	m.mu.Lock()
	m.config = cfg
	m.lastWritten = data
	m.mu.Unlock()

	if cfg.Server.Port != prevPort {
		m.logger.Info().Int("port", cfg.Server.Port).Msg("Port changed on disk, takes effect after restart")
	}
	m.logger.Info().Str("path", m.configPath).Msg("Configuration reloaded")
	m.notify(cfg)
}

// Close stops watching the config file
func (m *Manager) Close() error {
	m.mu.Lock()
	watcher, cancel := m.watcher, m.cancel
	m.watcher, m.cancel = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if watcher != nil {
		return watcher.Close()
	}
	return nil
}
