// Package control applies gated client requests to the host's pointer and keyboard.
package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"

	"remotemouse/internal/airmouse"
	"remotemouse/internal/input"
	"remotemouse/internal/logging"
	"remotemouse/internal/protocol"
	"remotemouse/internal/session"
	"remotemouse/internal/telemetry"
)

// ErrMalformedRequest rejects a request before it reaches the actuator
var ErrMalformedRequest = errors.New("malformed request")

// DefaultMaxSpeed matches the shipped touchpad_sensitivity default
const DefaultMaxSpeed = 5

// Actuator is the injection capability the surface drives
type Actuator interface {
	MoveRelative(dx, dy int)
	Click(button input.Button)
	Scroll(rawDY float64)
	PressKey(key string)
	Hotkey(keys []string) error
}

// Surface is the transport independent request boundary. HTTP handlers and
// the websocket hub both call into it.
type Surface struct {
	gate       *session.Gate
	integrator *airmouse.Integrator
	actuator   Actuator
	maxSpeed   atomic.Int64
	logger     zerolog.Logger
}

// New creates a surface over the shared session state
func New(gate *session.Gate, integrator *airmouse.Integrator, actuator Actuator, logger zerolog.Logger) *Surface {
	s := &Surface{
		gate:       gate,
		integrator: integrator,
		actuator:   actuator,
		logger:     logging.Component(logger, "control"),
	}
	s.maxSpeed.Store(DefaultMaxSpeed)
	return s
}

// SetMaxSpeed sets the multiplier applied to raw touchpad deltas
func (s *Surface) SetMaxSpeed(n int) {
	s.maxSpeed.Store(int64(n))
}

// MaxSpeed returns the touchpad multiplier
func (s *Surface) MaxSpeed() int {
	return int(s.maxSpeed.Load())
}

// Admit runs the admission check for origin
func (s *Surface) Admit(origin string) error {
	err := s.gate.Admit(origin)
	switch {
	case err == nil:
		telemetry.AdmissionTotal.WithLabelValues("admitted").Inc()
	case errors.Is(err, session.ErrBlocked):
		telemetry.AdmissionTotal.WithLabelValues("blocked").Inc()
		s.logger.Warn().Str("origin", origin).Msg("Blocked device refused")
	default:
		telemetry.AdmissionTotal.WithLabelValues("busy").Inc()
		s.logger.Debug().Str("origin", origin).Msg("Another device holds the session")
	}
	return err
}

// Authorize runs admission and, for control requests, the cooldown check
func (s *Surface) Authorize(origin string, control bool) error {
	if err := s.Admit(origin); err != nil {
		return err
	}
	if !control {
		return nil
	}
	if err := s.gate.CheckCooldown(); err != nil {
		telemetry.CooldownRejectionsTotal.Inc()
		var ce *session.CooldownError
		if errors.As(err, &ce) {
			s.logger.Debug().Str("origin", origin).Float64("remaining", ce.RemainingSeconds()).Msg("Cooldown active")
		}
		return err
	}
	return nil
}

// Connect is the explicit handshake. Every attempt drops the air-mouse
// baseline, then re-runs admission; repeating it is harmless.
func (s *Surface) Connect(origin string) error {
	s.integrator.Reset()
	return s.Admit(origin)
}

// Disconnect releases the session if origin holds it
func (s *Surface) Disconnect(origin string) bool {
	return s.gate.Release(origin)
}

// Status describes the session from the point of view of origin
func (s *Surface) Status(origin string) protocol.SessionPayload {
	st := s.gate.Status()
	return protocol.SessionPayload{
		Connected:                st.Connected,
		SessionID:                st.SessionID,
		OriginIsYou:              st.Connected && st.Origin == origin,
		CooldownRemainingSeconds: math.Round(st.CooldownRemaining.Seconds()*10) / 10,
	}
}

// AirMouse feeds an orientation sample, or drops the baseline when the
// gesture is inactive.
func (s *Surface) AirMouse(req protocol.AirMouseRequest) error {
	if !req.Active || req.Orientation == nil {
		s.integrator.Reset()
		return nil
	}
	if d, ok := s.integrator.Integrate(*req.Orientation); ok {
		s.actuator.MoveRelative(d.DX, d.DY)
	}
	return nil
}

// Touchpad applies a touchpad gesture
func (s *Surface) Touchpad(req protocol.TouchpadRequest) error {
	switch req.Action {
	case protocol.ActionMove:
		speed := float64(s.MaxSpeed())
		dx := int(math.Round(req.DX * speed))
		dy := int(math.Round(req.DY * speed))
		if dx != 0 || dy != 0 {
			s.actuator.MoveRelative(dx, dy)
		}
	case protocol.ActionLeftClick:
		s.actuator.Click(input.ButtonLeft)
	case protocol.ActionRightClick:
		s.actuator.Click(input.ButtonRight)
	case protocol.ActionScroll:
		s.actuator.Scroll(req.DY)
	case "":
		return fmt.Errorf("%w: missing action", ErrMalformedRequest)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrMalformedRequest, req.Action)
	}
	return nil
}

// KeyAction types a character or presses a named key
func (s *Surface) KeyAction(req protocol.KeyActionRequest) error {
	if req.Key == "" {
		return fmt.Errorf("%w: missing key", ErrMalformedRequest)
	}
	s.actuator.PressKey(req.Key)
	return nil
}

// Hotkey presses a key combination
func (s *Surface) Hotkey(req protocol.HotkeyRequest) error {
	if err := s.actuator.Hotkey(req.Keys); err != nil {
		if errors.Is(err, input.ErrNoKeys) {
			return fmt.Errorf("%w: %w", ErrMalformedRequest, err)
		}
		return err
	}
	return nil
}

// Dispatch authorizes and applies one websocket control message
func (s *Surface) Dispatch(origin string, msg protocol.Message) error {
	if err := s.Authorize(origin, true); err != nil {
		return err
	}

	switch msg.Type {
	case protocol.TypeAirMouse:
		var req protocol.AirMouseRequest
		if err := decode(msg.Payload, &req); err != nil {
			return err
		}
		return s.AirMouse(req)
	case protocol.TypeTouchpad:
		var req protocol.TouchpadRequest
		if err := decode(msg.Payload, &req); err != nil {
			return err
		}
		return s.Touchpad(req)
	case protocol.TypeKeyAction:
		var req protocol.KeyActionRequest
		if err := decode(msg.Payload, &req); err != nil {
			return err
		}
		return s.KeyAction(req)
	case protocol.TypeHotkey:
		var req protocol.HotkeyRequest
		if err := decode(msg.Payload, &req); err != nil {
			return err
		}
		return s.Hotkey(req)
	default:
		return fmt.Errorf("%w: unknown message type %q", ErrMalformedRequest, msg.Type)
	}
}

func decode(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return fmt.Errorf("%w: missing payload", ErrMalformedRequest)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	return nil
}
