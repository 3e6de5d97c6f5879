package qr

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "connect.png")
	require.NoError(t, WritePNG("https://192.168.1.20:4443/", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("https://192.168.1.20:4443/")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Contains(t, out, "\n")
}
