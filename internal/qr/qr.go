// Package qr renders the connect URL as a QR code for the phone to scan.
package qr

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 320

// WritePNG encodes url and writes it to path, creating parent directories.
func WritePNG(url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := qrcode.WriteFile(url, qrcode.Medium, DefaultSize, path); err != nil {
		return fmt.Errorf("failed to write qr code: %w", err)
	}
	return nil
}

// Terminal returns url as a block-character QR code for printing to a console.
func Terminal(url string) (string, error) {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode qr code: %w", err)
	}
	return code.ToSmallString(false), nil
}
