//go:build linux

package autostart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXDGAutostart(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	executable = func() (string, error) { return "/opt/remotemouse", nil }
	t.Cleanup(func() { executable = os.Executable })

	assert.False(t, IsEnabled())
	require.NoError(t, Set(true))
	assert.True(t, IsEnabled())
	assert.FileExists(t, filepath.Join(dir, "autostart", "remotemouse.desktop"))

	require.NoError(t, Set(false))
	assert.False(t, IsEnabled())
}
