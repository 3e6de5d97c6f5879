//go:build windows

package osutils

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

// IsAdmin checks if the current process has administrative privileges
func IsAdmin() bool {
	var token windows.Token
	h, _ := windows.GetCurrentProcess()
	if err := windows.OpenProcessToken(h, windows.TOKEN_QUERY, &token); err != nil {
		return false
	}
	defer token.Close()

	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := token.IsMember(sid)
	if err != nil {
		return false
	}
	return member
}

// EnsureFirewallRule makes sure an inbound TCP rule for port exists, asking
// for elevation when the process is not an administrator.
func EnsureFirewallRule(port int, logger zerolog.Logger) error {
	log := logger.With().Str("rule", FirewallRuleName).Int("port", port).Logger()

	output, err := exec.Command("netsh", "advfirewall", "firewall", "show", "rule", "name="+FirewallRuleName).CombinedOutput()
	out := string(output)
	if err == nil && strings.Contains(out, FirewallRuleName) {
		if strings.Contains(out, strconv.Itoa(port)) && strings.Contains(out, "Allow") {
			log.Debug().Msg("Firewall: rule already matches")
			return nil
		}
		log.Info().Msg("Firewall: rule exists with a different port, updating")
	} else {
		log.Info().Msg("Firewall: rule not found, creating")
	}

	// Not bound to -Program so the rule survives the executable moving.
	psCommand := fmt.Sprintf(
		"Remove-NetFirewallRule -DisplayName '%s' -ErrorAction SilentlyContinue; New-NetFirewallRule -DisplayName '%s' -Direction Inbound -LocalPort %d -Protocol TCP -Action Allow -Profile Any",
		FirewallRuleName, FirewallRuleName, port,
	)

	if !IsAdmin() {
		verbPtr, _ := syscall.UTF16PtrFromString("runas")
		exePtr, _ := syscall.UTF16PtrFromString("powershell.exe")
		argPtr, _ := syscall.UTF16PtrFromString(fmt.Sprintf("-NoProfile -WindowStyle Hidden -Command \"%s\"", psCommand))

		if err := windows.ShellExecute(0, verbPtr, exePtr, argPtr, nil, windows.SW_HIDE); err != nil {
			return fmt.Errorf("failed to launch elevated powershell: %w", err)
		}
		log.Info().Msg("Firewall: UAC prompt requested")
		return nil
	}

	if output, err := exec.Command("powershell", "-NoProfile", "-Command", psCommand).CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create firewall rule: %w (output: %s)", err, string(output))
	}
	log.Info().Msg("Firewall: rule applied")
	return nil
}
