// Package api provides the HTTPS control server used by phones and browsers.
package api

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"remotemouse/internal/config"
	"remotemouse/internal/control"
	"remotemouse/internal/logging"
	"remotemouse/internal/protocol"
	"remotemouse/internal/telemetry"
)

// restartGrace lets the port-change response reach the client before the
// listener goes away.
const restartGrace = 500 * time.Millisecond

// Server serves the web client, the settings API and the gated control API
type Server struct {
	configMgr *config.Manager
	surface   *control.Surface
	hub       *Hub
	assets    fs.FS
	logger    zerolog.Logger
	router    chi.Router

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	onRestart  func(newPort int)
}

// NewServer creates a new API server. assets holds index.html,
// settings.html and the static/ directory.
func NewServer(configMgr *config.Manager, surface *control.Surface, assets fs.FS, logger zerolog.Logger) *Server {
	s := &Server{
		configMgr: configMgr,
		surface:   surface,
		assets:    assets,
		logger:    logging.Component(logger, "api"),
	}
	s.hub = newHub(surface, s.logger)
	s.router = s.routes()
	go s.hub.start()
	return s
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// OnRestart registers the callback run when a settings change needs a new
// listening port. It runs after a short grace delay.
func (s *Server) OnRestart(fn func(newPort int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRestart = fn
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(telemetry.MetricsMiddleware)

	// Always reachable so a client can renegotiate and a human can reconfigure
	r.Get("/", s.serveAsset("index.html"))
	r.Get("/settings", s.serveAsset("settings.html"))
	r.Handle("/static/*", s.staticHandler())
	r.Get("/api/settings", s.handleGetSettings)
	r.Post("/api/settings", s.handlePostSettings)
	r.Post("/api/connect", s.handleConnect)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", telemetry.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession(false))
		r.Get("/api/status", s.handleStatus)
		r.Post("/api/disconnect", s.handleDisconnect)
		r.Get("/ws", s.hub.handleWebSocket)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession(true))
		r.Post("/api/airmouse", handleControl(s.surface.AirMouse))
		r.Post("/api/touchpad", handleControl(s.surface.Touchpad))
		r.Post("/api/key_action", handleControl(s.surface.KeyAction))
		r.Post("/api/hotkey", handleControl(s.surface.Hotkey))
	})

	return r
}

// Listen loads the TLS key pair and binds the port. Errors here are fatal
// to the process.
func (s *Server) Listen(port int, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("load certificate: %w", err)
	}

	// tcp4 avoids IPv6-only binding issues on Windows
	addr := fmt.Sprintf("0.0.0.0:%d", port)
	ln, err := net.Listen("tcp4", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Unlock()

	s.logger.Info().Str("addr", addr).Msg("HTTPS server listening")
	return nil
}

// Serve blocks serving the bound listener until Shutdown.
func (s *Server) Serve() error {
	s.mu.Lock()
	srv, ln := s.httpServer, s.listener
	s.mu.Unlock()
	if srv == nil {
		return errors.New("serve called before listen")
	}

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// logRequests logs every request at debug level
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("origin", originOf(r)).
			Msg("Request")
		next.ServeHTTP(w, r)
	})
}

// requireSession runs admission, and the cooldown check for control routes
func (s *Server) requireSession(control bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := s.surface.Authorize(originOf(r), control); err != nil {
				writeControlError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// originOf identifies the client by the IP of the TCP peer. Forwarded
// headers are ignored.
func originOf(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleControl decodes a JSON body into T and applies it
func handleControl[T any](apply func(T) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req T
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
			writeControlError(w, fmt.Errorf("%w: %w", control.ErrMalformedRequest, err))
			return
		}
		if err := apply(req); err != nil {
			writeControlError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, protocol.StatusResponse{Status: "ok"})
	}
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if err := s.surface.Connect(originOf(r)); err != nil {
		writeJSON(w, http.StatusForbidden, protocol.StatusResponse{Status: "error", Message: "Connection refused."})
		return
	}
	writeJSON(w, http.StatusOK, protocol.StatusResponse{Status: "ok", Message: "Device connected successfully."})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if !s.surface.Disconnect(originOf(r)) {
		writeJSON(w, http.StatusOK, protocol.StatusResponse{Status: "ok", Message: "Not connected."})
		return
	}
	writeJSON(w, http.StatusOK, protocol.StatusResponse{Status: "ok", Message: "Device disconnected."})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.surface.Status(originOf(r)))
}

// handleHealth handles GET /health (for monitoring)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.configMgr.Get().View())
}

func (s *Server) handlePostSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&values); err != nil {
		writeJSON(w, http.StatusBadRequest, protocol.ErrorPayload{Status: "error", Message: "Invalid settings data"})
		return
	}

	s.logger.Info().Str("origin", originOf(r)).Msg("Receiving settings update")

	change, err := s.configMgr.ApplySettings(values)
	if errors.Is(err, config.ErrInvalid) {
		writeJSON(w, http.StatusBadRequest, protocol.ErrorPayload{Status: "error", Message: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to save settings")
		writeJSON(w, http.StatusInternalServerError, protocol.ErrorPayload{Status: "error", Message: "Failed to save settings"})
		return
	}

	if change.PortChanged {
		s.mu.Lock()
		restart := s.onRestart
		s.mu.Unlock()
		if restart != nil {
			port := change.NewPort
			time.AfterFunc(restartGrace, func() { restart(port) })
		}
		writeJSON(w, http.StatusOK, protocol.SettingsResponse{
			Status:  "ok",
			Message: "Port changed. Restarting server...",
			NewPort: &change.NewPort,
		})
		return
	}

	writeJSON(w, http.StatusOK, protocol.SettingsResponse{Status: "ok", Message: "Settings saved."})
}

func (s *Server) serveAsset(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, s.assets, name)
	}
}

func (s *Server) staticHandler() http.Handler {
	static, err := fs.Sub(s.assets, "static")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(static)))
}
