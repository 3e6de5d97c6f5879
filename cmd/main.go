// Remote Mouse - control this computer's pointer and keyboard from a phone
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"remotemouse/internal/autostart"
	"remotemouse/internal/config"
	"remotemouse/internal/network"
	"remotemouse/internal/qr"
)

var version = "0.1.0"

type options struct {
	configPath string
	debug      bool
	noTray     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "remotemouse",
		Short: "Remote Mouse - use your phone as a mouse and keyboard",
		Long: `Remote Mouse serves a web client over HTTPS on the local network. The first
phone to connect becomes the controller; touch, air mouse and key events it
sends are injected as real input on this computer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService(opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.toml (default: per-user config directory)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.Flags().BoolVar(&opts.noTray, "no-tray", false, "run without the system tray icon")

	root.AddCommand(newVersionCmd(), newURLCmd(opts), newAutostartCmd(opts))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "remotemouse version %s\n", version)
		},
	}
}

func newURLCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "url",
		Short: "Print the connect URL and a QR code to scan",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgMgr, err := loadConfig(opts, zerolog.Nop())
			if err != nil {
				return err
			}
			url := network.ConnectURL(cfgMgr.Get().Server.Port)
			code, err := qr.Terminal(url)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			fmt.Fprint(cmd.OutOrStdout(), code)
			return nil
		},
	}
}

func newAutostartCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage start on login",
	}

	toggle := func(enabled bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfgMgr, err := loadConfig(opts, zerolog.Nop())
			if err != nil {
				return err
			}
			if err := autostart.Set(enabled); err != nil {
				return err
			}
			if _, err := cfgMgr.ApplySettings(map[string]any{"startup": enabled}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Start on login: %v\n", enabled)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "enable", Short: "Start on login", RunE: toggle(true)},
		&cobra.Command{Use: "disable", Short: "Do not start on login", RunE: toggle(false)},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether start on login is enabled",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Start on login: %v\n", autostart.IsEnabled())
			},
		},
	)
	return cmd
}

func loadConfig(opts *options, logger zerolog.Logger) (*config.Manager, error) {
	cfgMgr, err := config.NewManager(opts.configPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}
	if err := cfgMgr.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfgMgr, nil
}
