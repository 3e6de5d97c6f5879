package tray

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapICO(t *testing.T) {
	pngData := []byte("\x89PNGfake")
	ico := wrapICO(pngData)

	require.Len(t, ico, 22+len(pngData))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[2:4]), "icon type")
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(ico[4:6]), "image count")
	assert.Equal(t, uint32(len(pngData)), binary.LittleEndian.Uint32(ico[14:18]))
	assert.Equal(t, uint32(22), binary.LittleEndian.Uint32(ico[18:22]))
	assert.Equal(t, pngData, ico[22:])
}

func TestPointerEncodes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, pointer()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, iconSize, img.Bounds().Dx())
}

func TestMenuItemCheckedBeforeRun(t *testing.T) {
	tr := New("Remote Mouse", "tooltip")
	item := tr.AddCheckbox("Start on login", false, func(mi *MenuItem) {})
	tr.AddSeparator()
	tr.AddMenuItem("Quit", func() {})

	item.SetChecked(true)
	assert.True(t, item.IsChecked())
	assert.Len(t, tr.items, 3)
	assert.Nil(t, tr.items[1])
}
