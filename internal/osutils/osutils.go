// Package osutils wraps the host operating system services the service needs
// outside of input: firewall, browser launch and process restart.
package osutils

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// FirewallRuleName is the inbound rule created for the listener port.
const FirewallRuleName = "Remote Mouse Server"

// openCommand returns the command that opens target with the default handler.
func openCommand(goos, target string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		return "open", []string{target}
	default:
		return "xdg-open", []string{target}
	}
}

// Open opens a URL or file with the desktop's default handler.
func Open(target string) error {
	name, args := openCommand(runtime.GOOS, target)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}
	return nil
}

// Relaunch starts a fresh copy of the running executable with the same
// arguments. The caller exits afterwards.
func Relaunch() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	cmd.Env = os.Environ()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to relaunch: %w", err)
	}
	return cmd.Process.Release()
}
