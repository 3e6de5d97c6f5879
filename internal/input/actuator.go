package input

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"remotemouse/internal/logging"
	"remotemouse/internal/telemetry"
)

// Actuator serializes every injection call process-wide. Injection failures
// are logged and dropped so one bad event never ends a session.
type Actuator struct {
	mu      sync.Mutex
	backend Backend
	logger  zerolog.Logger
}

// NewActuator wraps backend in the exclusive region
func NewActuator(backend Backend, logger zerolog.Logger) *Actuator {
	return &Actuator{
		backend: backend,
		logger:  logging.Component(logger, "actuator"),
	}
}

// Busy reports whether an injection call is in flight. It never blocks.
func (a *Actuator) Busy() bool {
	if a.mu.TryLock() {
		a.mu.Unlock()
		return false
	}
	return true
}

// exclusive runs fn while holding the actuator lock. The lock is released
// on every exit path, including a panic inside the backend.
func (a *Actuator) exclusive(op string, fn func() error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}()

	if err != nil {
		telemetry.ActuationsTotal.WithLabelValues(op, "error").Inc()
		a.logger.Warn().Err(err).Str("op", op).Msg("Input injection failed")
		return
	}
	telemetry.ActuationsTotal.WithLabelValues(op, "ok").Inc()
}

// MoveRelative moves the pointer by (dx, dy) pixels
func (a *Actuator) MoveRelative(dx, dy int) {
	a.exclusive("move", func() error {
		return a.backend.MoveRelative(dx, dy)
	})
}

// Click clicks the left or right button
func (a *Actuator) Click(button Button) {
	if !button.Valid() {
		a.logger.Warn().Str("button", string(button)).Msg("Ignoring click")
		return
	}
	a.exclusive("click", func() error {
		return a.backend.Click(button)
	})
}

// Scroll scrolls by the raw vertical delta reported by the client. The sign
// is inverted and the magnitude truncated to whole wheel steps.
func (a *Actuator) Scroll(rawDY float64) {
	amount := int(-rawDY)
	if amount == 0 {
		return
	}
	a.exclusive("scroll", func() error {
		return a.backend.Scroll(amount)
	})
}

// TypeText types literal text
func (a *Actuator) TypeText(text string) {
	if text == "" {
		return
	}
	a.exclusive("type", func() error {
		return a.backend.TypeText(text)
	})
}

// PressKey types a single character as text, or taps a named key.
// Unknown names are logged and ignored.
func (a *Actuator) PressKey(key string) {
	if isSingleChar(key) {
		a.TypeText(key)
		return
	}
	name, err := resolveKey(key)
	if err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("Key action failed")
		return
	}
	a.exclusive("key", func() error {
		return a.backend.KeyTap(name)
	})
}

// Hotkey presses keys as a chord: down in order, then up in reverse order.
// A single key behaves exactly like PressKey.
func (a *Actuator) Hotkey(keys []string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	if len(keys) == 1 {
		a.PressKey(keys[0])
		return nil
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name, err := resolveKey(k)
		if err != nil {
			// Pressing a partial chord could leave modifiers stuck
			a.logger.Warn().Err(err).Strs("keys", keys).Msg("Hotkey ignored")
			return nil
		}
		names = append(names, name)
	}

	a.exclusive("hotkey", func() error {
		pressed := make([]string, 0, len(names))
		var firstErr error
		for _, name := range names {
			if err := a.backend.KeyDown(name); err != nil {
				firstErr = fmt.Errorf("key down %s: %w", name, err)
				break
			}
			pressed = append(pressed, name)
		}
		for i := len(pressed) - 1; i >= 0; i-- {
			if err := a.backend.KeyUp(pressed[i]); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("key up %s: %w", pressed[i], err)
			}
		}
		if firstErr != nil {
			return fmt.Errorf("chord %s: %w", strings.Join(names, "+"), firstErr)
		}
		return nil
	})
	return nil
}
