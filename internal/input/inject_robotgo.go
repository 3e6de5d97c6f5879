//go:build cgo

package input

import (
	"github.com/go-vgo/robotgo"
)

// Injector drives the real pointer and keyboard through robotgo
type Injector struct{}

// NewInjector creates the platform injector
func NewInjector() Backend {
	return &Injector{}
}

// MoveRelative moves the cursor by (dx, dy) pixels
func (i *Injector) MoveRelative(dx, dy int) error {
	robotgo.MoveRelative(dx, dy)
	return nil
}

// Click presses and releases a mouse button at the current position
func (i *Injector) Click(button Button) error {
	robotgo.Click(string(button))
	return nil
}

// Scroll turns the vertical wheel; positive amounts scroll up
func (i *Injector) Scroll(amount int) error {
	robotgo.Scroll(0, amount)
	return nil
}

// TypeText types a literal string
func (i *Injector) TypeText(text string) error {
	robotgo.TypeStr(text)
	return nil
}

// KeyTap presses and releases a named key
func (i *Injector) KeyTap(key string) error {
	return robotgo.KeyTap(key)
}

// KeyDown holds a named key
func (i *Injector) KeyDown(key string) error {
	return robotgo.KeyToggle(key, "down")
}

// KeyUp releases a named key
func (i *Injector) KeyUp(key string) error {
	return robotgo.KeyToggle(key, "up")
}
