//go:build darwin

package autostart

import (
	"os"
	"path/filepath"
)

func plistPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "LaunchAgents", Label+".plist"), nil
}

// Enable installs a LaunchAgent for the current user.
func Enable() error {
	path, err := plistPath()
	if err != nil {
		return err
	}
	return writeLauncher(path, macLaunchAgentPlist)
}

// Disable removes the LaunchAgent.
func Disable() error {
	path, err := plistPath()
	if err != nil {
		return err
	}
	return removeLauncher(path)
}

// IsEnabled reports whether the LaunchAgent exists.
func IsEnabled() bool {
	path, err := plistPath()
	if err != nil {
		return false
	}
	return launcherExists(path)
}
