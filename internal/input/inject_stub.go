//go:build !cgo

package input

// Stub implementation for builds without cgo

// Injector represents a stub input injector
type Injector struct{}

// NewInjector creates a new stub injector
func NewInjector() Backend {
	return &Injector{}
}

func (i *Injector) MoveRelative(dx, dy int) error {
	return ErrUnsupported
}

func (i *Injector) Click(button Button) error {
	return ErrUnsupported
}

func (i *Injector) Scroll(amount int) error {
	return ErrUnsupported
}

func (i *Injector) TypeText(text string) error {
	return ErrUnsupported
}

func (i *Injector) KeyTap(key string) error {
	return ErrUnsupported
}

func (i *Injector) KeyDown(key string) error {
	return ErrUnsupported
}

func (i *Injector) KeyUp(key string) error {
	return ErrUnsupported
}

