//go:build linux

package autostart

import (
	"os"
	"path/filepath"
)

func desktopPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "autostart", "remotemouse.desktop"), nil
}

// Enable writes an XDG autostart entry.
func Enable() error {
	path, err := desktopPath()
	if err != nil {
		return err
	}
	return writeLauncher(path, xdgDesktopEntry)
}

// Disable removes the XDG autostart entry.
func Disable() error {
	path, err := desktopPath()
	if err != nil {
		return err
	}
	return removeLauncher(path)
}

// IsEnabled reports whether the XDG autostart entry exists.
func IsEnabled() bool {
	path, err := desktopPath()
	if err != nil {
		return false
	}
	return launcherExists(path)
}
