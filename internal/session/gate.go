// Package session decides which remote device may drive the host and when
// remote control is suppressed because someone is using the machine locally.
package session

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"remotemouse/internal/logging"
)

// Status is a point-in-time view of the gate
type Status struct {
	Connected         bool          `json:"connected"`
	Origin            string        `json:"origin,omitempty"`
	SessionID         string        `json:"session_id,omitempty"`
	BoundAt           time.Time     `json:"bound_at,omitempty"`
	CooldownRemaining time.Duration `json:"-"`
}

// Gate admits exactly one remote origin at a time and applies the
// physical-input cooldown.
type Gate struct {
	mu        sync.Mutex
	origin    string
	sessionID string
	boundAt   time.Time
	blocked   map[string]struct{}
	onReset   []func()

	// unix nanoseconds of the last physical input, 0 when none was seen
	lastPhysical atomic.Int64
	cooldown     atomic.Int64

	now    func() time.Time
	logger zerolog.Logger
}

// NewGate creates a gate with no session, an empty block list and no cooldown
func NewGate(logger zerolog.Logger) *Gate {
	return &Gate{
		blocked: make(map[string]struct{}),
		now:     time.Now,
		logger:  logging.Component(logger, "session"),
	}
}

// SetClock overrides the time source. Intended for tests.
func (g *Gate) SetClock(now func() time.Time) {
	if now != nil {
		g.now = now
	}
}

// Admit binds the session to origin if none is bound, and otherwise accepts
// only the bound origin. Blocked origins are always rejected.
func (g *Gate) Admit(origin string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.blocked[origin]; ok {
		return ErrBlocked
	}
	if g.origin == "" {
		g.origin = origin
		g.sessionID = uuid.NewString()
		g.boundAt = g.now()
		g.logger.Info().Str("origin", origin).Str("session_id", g.sessionID).Msg("Device connected")
		return nil
	}
	if g.origin != origin {
		return ErrAnotherDevice
	}
	return nil
}

// Reset releases the current session so the next admitted origin binds it.
func (g *Gate) Reset() {
	g.mu.Lock()
	prev := g.origin
	g.origin = ""
	g.sessionID = ""
	g.boundAt = time.Time{}
	callbacks := append([]func(){}, g.onReset...)
	g.mu.Unlock()

	if prev != "" {
		g.logger.Info().Str("origin", prev).Msg("Session released")
	}
	for _, fn := range callbacks {
		fn()
	}
}

// Release resets the session only if origin currently holds it.
func (g *Gate) Release(origin string) bool {
	g.mu.Lock()
	held := g.origin != "" && g.origin == origin
	g.mu.Unlock()
	if !held {
		return false
	}
	g.Reset()
	return true
}

// OnReset registers a callback run after every Reset
func (g *Gate) OnReset(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onReset = append(g.onReset, fn)
}

// SetBlockList replaces the set of origins that are never admitted.
func (g *Gate) SetBlockList(origins []string) {
	blocked := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			blocked[o] = struct{}{}
		}
	}

	g.mu.Lock()
	g.blocked = blocked
	g.mu.Unlock()
}

// IsBlocked reports whether origin is on the block list
func (g *Gate) IsBlocked(origin string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.blocked[origin]
	return ok
}

// SetCooldown sets the suppression window that follows physical input.
// Negative durations are treated as zero.
func (g *Gate) SetCooldown(d time.Duration) {
	if d < 0 {
		d = 0
	}
	g.cooldown.Store(int64(d))
}

// Cooldown returns the configured suppression window
func (g *Gate) Cooldown() time.Duration {
	return time.Duration(g.cooldown.Load())
}

// RecordPhysicalInput stores the time of the latest host-originated input.
// It never blocks.
func (g *Gate) RecordPhysicalInput(at time.Time) {
	g.lastPhysical.Store(at.UnixNano())
}

// LastPhysicalInput returns the last recorded physical input time, or the zero time.
func (g *Gate) LastPhysicalInput() time.Time {
	ns := g.lastPhysical.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// CheckCooldown returns a *CooldownError while remote input is suppressed.
func (g *Gate) CheckCooldown() error {
	if remaining := g.cooldownRemaining(); remaining > 0 {
		return &CooldownError{Remaining: remaining}
	}
	return nil
}

func (g *Gate) cooldownRemaining() time.Duration {
	last := g.lastPhysical.Load()
	if last == 0 {
		return 0
	}
	end := time.Unix(0, last).Add(g.Cooldown())
	return end.Sub(g.now())
}

// Status returns the current session and cooldown state.
func (g *Gate) Status() Status {
	g.mu.Lock()
	st := Status{
		Connected: g.origin != "",
		Origin:    g.origin,
		SessionID: g.sessionID,
		BoundAt:   g.boundAt,
	}
	g.mu.Unlock()

	if remaining := g.cooldownRemaining(); remaining > 0 {
		st.CooldownRemaining = remaining
	}
	return st
}
