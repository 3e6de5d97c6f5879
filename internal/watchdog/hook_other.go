//go:build !windows && !linux && !(darwin && cgo)

package watchdog

import "errors"

func (w *Watchdog) startPlatform() error {
	return errors.New("global input hooks are not supported on this platform")
}
