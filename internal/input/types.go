// Package input performs OS-level pointer and keyboard injection.
package input

import "errors"

var (
	// ErrUnsupported is returned by backends that cannot inject on this build
	ErrUnsupported = errors.New("input injection not supported on this platform")

	// ErrUnknownKey is returned for key names with no mapping
	ErrUnknownKey = errors.New("unknown key name")

	// ErrUnknownButton is returned for buttons other than left and right
	ErrUnknownButton = errors.New("unknown mouse button")

	// ErrNoKeys is returned when a hotkey chord is empty
	ErrNoKeys = errors.New("hotkey requires at least one key")
)

// Button identifies a mouse button
type Button string

const (
	ButtonLeft  Button = "left"
	ButtonRight Button = "right"
)

// Valid reports whether b is a button the actuator can click
func (b Button) Valid() bool {
	return b == ButtonLeft || b == ButtonRight
}

// Backend is the raw OS injection capability. Implementations need not be
// safe for concurrent use; the Actuator serializes every call.
type Backend interface {
	MoveRelative(dx, dy int) error
	Click(button Button) error
	Scroll(amount int) error
	TypeText(text string) error
	KeyTap(key string) error
	KeyDown(key string) error
	KeyUp(key string) error
}
