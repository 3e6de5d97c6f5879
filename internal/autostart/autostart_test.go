package autostart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlist(t *testing.T) {
	out, err := render(macLaunchAgentPlist, "/Applications/RemoteMouse.app/Contents/MacOS/remotemouse")
	require.NoError(t, err)
	assert.Contains(t, string(out), "<string>com.remotemouse.host</string>")
	assert.Contains(t, string(out), "<string>/Applications/RemoteMouse.app/Contents/MacOS/remotemouse</string>")
	assert.Contains(t, string(out), "<key>RunAtLoad</key>")
}

func TestRenderDesktopEntry(t *testing.T) {
	out, err := render(xdgDesktopEntry, "/usr/local/bin/remotemouse")
	require.NoError(t, err)
	assert.Contains(t, string(out), "[Desktop Entry]")
	assert.Contains(t, string(out), `Exec="/usr/local/bin/remotemouse"`)
}

func TestLauncherLifecycle(t *testing.T) {
	executable = func() (string, error) { return "/opt/remotemouse", nil }
	t.Cleanup(func() { executable = os.Executable })

	path := filepath.Join(t.TempDir(), "autostart", "remotemouse.desktop")
	assert.False(t, launcherExists(path))

	require.NoError(t, writeLauncher(path, xdgDesktopEntry))
	assert.True(t, launcherExists(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/opt/remotemouse")

	require.NoError(t, removeLauncher(path))
	assert.False(t, launcherExists(path))
	assert.NoError(t, removeLauncher(path), "removing twice is not an error")
}
