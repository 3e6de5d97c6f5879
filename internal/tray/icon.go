package tray

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 16

// pointer draws a filled arrow cursor on a transparent square.
func pointer() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	fill := color.NRGBA{R: 0x3b, G: 0x6e, B: 0xa5, A: 0xff}
	for y := 1; y < 14; y++ {
		for x := 2; x < 2+y && x < 12; x++ {
			img.Set(x, y, fill)
		}
	}
	for y := 10; y < 15; y++ {
		img.Set(7, y, fill)
		img.Set(8, y, fill)
	}
	return img
}

// icon returns the tray icon as ICO on Windows and PNG elsewhere.
func icon() []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pointer()); err != nil {
		return nil
	}
	if runtime.GOOS != "windows" {
		return buf.Bytes()
	}
	return wrapICO(buf.Bytes())
}

// wrapICO embeds a PNG in a single-image ICO container.
func wrapICO(pngData []byte) []byte {
	var ico bytes.Buffer
	_ = binary.Write(&ico, binary.LittleEndian, [3]uint16{0, 1, 1})
	ico.Write([]byte{iconSize, iconSize, 0, 0})
	_ = binary.Write(&ico, binary.LittleEndian, [2]uint16{1, 32})
	_ = binary.Write(&ico, binary.LittleEndian, [2]uint32{uint32(len(pngData)), 22})
	ico.Write(pngData)
	return ico.Bytes()
}
