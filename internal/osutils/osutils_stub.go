//go:build !windows

package osutils

import "github.com/rs/zerolog"

// EnsureFirewallRule is a no-op outside Windows.
func EnsureFirewallRule(port int, logger zerolog.Logger) error {
	logger.Debug().Int("port", port).Msg("Firewall: automatic rule management is only supported on Windows")
	return nil
}
