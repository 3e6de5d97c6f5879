//go:build !darwin && !linux && !windows

package autostart

// Enable is not supported on this platform.
func Enable() error { return ErrUnsupported }

// Disable is not supported on this platform.
func Disable() error { return ErrUnsupported }

// IsEnabled always reports false on this platform.
func IsEnabled() bool { return false }
