package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"remotemouse/internal/airmouse"
	"remotemouse/internal/api"
	"remotemouse/internal/autostart"
	"remotemouse/internal/config"
	"remotemouse/internal/control"
	"remotemouse/internal/embedded"
	"remotemouse/internal/input"
	"remotemouse/internal/logging"
	"remotemouse/internal/network"
	"remotemouse/internal/osutils"
	"remotemouse/internal/protocol"
	"remotemouse/internal/qr"
	"remotemouse/internal/session"
	"remotemouse/internal/tray"
	"remotemouse/internal/watchdog"
)

const shutdownTimeout = 3 * time.Second

type service struct {
	cfgMgr     *config.Manager
	gate       *session.Gate
	integrator *airmouse.Integrator
	surface    *control.Surface
	watchdog   *watchdog.Watchdog
	server     *api.Server
	logger     zerolog.Logger

	// port the listener is bound to; the config may hold a pending one
	port int
}

func runService(opts *options) error {
	logger := logging.Setup(opts.debug)
	logger.Info().Str("version", version).Msg("Remote Mouse starting")

	cfgMgr, err := loadConfig(opts, logger)
	if err != nil {
		return err
	}
	cfg := cfgMgr.Get()

	gate := session.NewGate(logger)
	integrator := airmouse.NewIntegrator(cfg.Settings.MouseSensitivity)
	actuator := input.NewActuator(input.NewInjector(), logger)
	surface := control.New(gate, integrator, actuator, logger)

	svc := &service{
		cfgMgr:     cfgMgr,
		gate:       gate,
		integrator: integrator,
		surface:    surface,
		watchdog:   watchdog.New(actuator, gate, logger),
		server:     api.NewServer(cfgMgr, surface, embedded.Web(), logger),
		logger:     logger,
	}

	gate.OnReset(integrator.Reset)
	gate.OnReset(func() {
		svc.server.Hub().Broadcast(protocol.TypeSession, protocol.SessionPayload{Connected: false})
	})

	svc.apply(cfg)
	cfgMgr.RegisterChangeCallback(svc.apply)
	if err := cfgMgr.Watch(); err != nil {
		logger.Warn().Err(err).Msg("Config hot reload disabled")
	}
	defer cfgMgr.Close()

	if err := svc.watchdog.Start(); err != nil {
		logger.Warn().Err(err).Msg("Physical input watchdog unavailable, cooldown and release hotkey disabled")
	}

	certFile := cfgMgr.ResolvePath(cfg.Server.CertFile)
	keyFile := cfgMgr.ResolvePath(cfg.Server.KeyFile)
	if err := svc.server.Listen(cfg.Server.Port, certFile, keyFile); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start HTTPS server")
	}
	svc.port = cfg.Server.Port
	go func() {
		if err := svc.server.Serve(); err != nil {
			logger.Error().Err(err).Msg("HTTPS server stopped")
		}
	}()
	svc.server.OnRestart(svc.restart)

	go func() {
		if err := osutils.EnsureFirewallRule(cfg.Server.Port, logger); err != nil {
			logger.Warn().Err(err).Msg("Firewall rule not applied")
		}
	}()

	logger.Info().Str("url", svc.connectURL()).Msg("Open this address on your phone")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.noTray {
		<-ctx.Done()
	} else {
		t := svc.buildTray()
		go func() {
			<-ctx.Done()
			t.Stop()
		}()
		t.Run()
	}

	logger.Info().Msg("Shutting down...")
	return svc.shutdown()
}

// apply pushes a configuration snapshot into the running components.
func (s *service) apply(cfg config.Config) {
	s.integrator.SetSensitivity(cfg.Settings.MouseSensitivity)
	s.surface.SetMaxSpeed(cfg.Settings.TouchpadSensitivity)
	s.gate.SetCooldown(time.Duration(cfg.Settings.CooldownSeconds) * time.Second)
	s.gate.SetBlockList(cfg.BlockList())

	chords := s.watchdog.Chords()
	chords.Clear()
	chords.Register(cfg.Settings.ReleaseHotkey, func() {
		s.logger.Info().Msg("Release hotkey pressed, disconnecting device")
		s.gate.Reset()
	})

	if autostart.IsEnabled() != cfg.Settings.Startup {
		if err := autostart.Set(cfg.Settings.Startup); err != nil {
			s.logger.Warn().Err(err).Bool("startup", cfg.Settings.Startup).Msg("Failed to update start on login")
		}
	}

	s.server.Hub().Broadcast(protocol.TypeSettings, cfg.View())
}

func (s *service) buildTray() *tray.Tray {
	t := tray.New("Remote Mouse", "Remote Mouse Server")

	t.AddMenuItem("Show QR Code", func() {
		url := s.connectURL()
		path := filepath.Join(os.TempDir(), "remotemouse-qr.png")
		if err := qr.WritePNG(url, path); err != nil {
			s.logger.Error().Err(err).Msg("Failed to render QR code")
			return
		}
		if err := osutils.Open(path); err != nil {
			s.logger.Error().Err(err).Msg("Failed to show QR code")
		}
	})
	t.AddMenuItem("Settings", func() {
		if err := osutils.Open(s.settingsURL()); err != nil {
			s.logger.Error().Err(err).Msg("Failed to open settings")
		}
	})
	t.AddCheckbox("Start on login", s.cfgMgr.Get().Settings.Startup, func(item *tray.MenuItem) {
		enabled := !item.IsChecked()
		if _, err := s.cfgMgr.ApplySettings(map[string]any{"startup": enabled}); err != nil {
			s.logger.Error().Err(err).Msg("Failed to save start on login")
			return
		}
		item.SetChecked(enabled)
	})
	t.AddSeparator()
	t.AddMenuItem("Disconnect device", s.gate.Reset)
	t.AddSeparator()
	t.AddMenuItem("Quit", t.Stop)
	return t
}

// connectURL is the address phones open for the running listener.
func (s *service) connectURL() string {
	return network.ConnectURL(s.port)
}

// settingsURL opens the settings page of the running listener locally.
func (s *service) settingsURL() string {
	return network.FormatURL("127.0.0.1", s.port) + "settings"
}

// restart closes the listener and hands over to a fresh process bound to
// the new port.
func (s *service) restart(newPort int) {
	s.logger.Info().Int("port", newPort).Msg("Restarting on new port")
	if err := s.shutdown(); err != nil {
		s.logger.Warn().Err(err).Msg("Graceful shutdown incomplete")
	}
	if err := osutils.Relaunch(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to relaunch, exiting")
		os.Exit(1)
	}
	os.Exit(0)
}

func (s *service) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
