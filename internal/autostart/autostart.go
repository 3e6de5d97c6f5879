// Package autostart registers the host to start on login.
package autostart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Label identifies the entry in every OS launcher.
const Label = "com.remotemouse.host"

// ErrUnsupported is returned on platforms without a login launcher.
var ErrUnsupported = errors.New("autostart not supported on this platform")

const macLaunchAgentPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <false/>
</dict>
</plist>
`

const xdgDesktopEntry = `[Desktop Entry]
Type=Application
Name=Remote Mouse
Comment=Control this computer from your phone
Exec="{{.ExecutablePath}}"
Terminal=false
X-GNOME-Autostart-enabled=true
`

type launcher struct {
	Label          string
	ExecutablePath string
}

func render(tmplText, execPath string) ([]byte, error) {
	tmpl, err := template.New("launcher").Parse(tmplText)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, launcher{Label: Label, ExecutablePath: execPath}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// executable is swapped in tests.
var executable = os.Executable

// writeLauncher renders tmplText for the running executable into path.
func writeLauncher(path, tmplText string) error {
	execPath, err := executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	content, err := render(tmplText, execPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0644)
}

func removeLauncher(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func launcherExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Set enables or disables autostart to match enabled.
func Set(enabled bool) error {
	if enabled {
		return Enable()
	}
	return Disable()
}
