package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAdmissionDenied is the parent of every admission rejection
	ErrAdmissionDenied = errors.New("admission denied")

	// ErrBlocked is returned when the origin is on the block list
	ErrBlocked = fmt.Errorf("%w: device is blocked", ErrAdmissionDenied)

	// ErrAnotherDevice is returned when a different origin already holds the session
	ErrAnotherDevice = fmt.Errorf("%w: another device is already connected", ErrAdmissionDenied)

	// ErrCooldownActive is the parent of every cooldown rejection
	ErrCooldownActive = errors.New("cooldown active")
)

// CooldownError reports how long remote control stays suppressed.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("Cooldown: %.1fs", e.Remaining.Seconds())
}

// Is lets errors.Is match ErrCooldownActive.
func (e *CooldownError) Is(target error) bool {
	return target == ErrCooldownActive
}

// RemainingSeconds returns the remaining time rounded to one decimal.
func (e *CooldownError) RemainingSeconds() float64 {
	return float64(e.Remaining.Round(100*time.Millisecond)) / float64(time.Second)
}
