// Package embedded provides the web client served to control devices.
package embedded

import (
	"embed"
	"io/fs"
)

//go:embed web
var webFS embed.FS

// Web returns the client assets rooted at index.html
func Web() fs.FS {
	sub, err := fs.Sub(webFS, "web")
	if err != nil {
		// the directory is part of the binary
		panic(err)
	}
	return sub
}
