// Package watchdog observes physical mouse and keyboard activity on the host.
package watchdog

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"remotemouse/internal/logging"
	"remotemouse/internal/telemetry"
)

// BusyProber reports whether injected input is currently in flight
type BusyProber interface {
	Busy() bool
}

// Recorder stores the time of the latest physical input
type Recorder interface {
	RecordPhysicalInput(at time.Time)
}

// Watchdog turns host input events into physical-input timestamps. It never
// blocks on the actuator: while an injection is in flight, events are
// assumed to be our own and skipped.
type Watchdog struct {
	actuator BusyProber
	recorder Recorder
	chords   *ChordMatcher
	now      func() time.Time
	logger   zerolog.Logger

	startOnce sync.Once
	startErr  error
}

// New creates a watchdog. Call Start to install the platform hooks.
func New(actuator BusyProber, recorder Recorder, logger zerolog.Logger) *Watchdog {
	logger = logging.Component(logger, "watchdog")
	return &Watchdog{
		actuator: actuator,
		recorder: recorder,
		chords:   NewChordMatcher(logger),
		now:      time.Now,
		logger:   logger,
	}
}

// Chords returns the matcher used for host-side hotkeys
func (w *Watchdog) Chords() *ChordMatcher {
	return w.chords
}

// Observe handles one host input event of any kind. It returns whether
// the event was recorded as physical input.
func (w *Watchdog) Observe() bool {
	if w.actuator.Busy() {
		telemetry.PhysicalInputEventsTotal.WithLabelValues("false").Inc()
		return false
	}
	w.recorder.RecordPhysicalInput(w.now())
	telemetry.PhysicalInputEventsTotal.WithLabelValues("true").Inc()
	return true
}

// KeyEvent handles a key or button transition. Presses that happen during
// an injection are not fed to the chord matcher; releases always are.
func (w *Watchdog) KeyEvent(key string, isDown bool) {
	recorded := w.Observe()
	if isDown && !recorded {
		return
	}
	w.chords.UpdateState(key, isDown)
}

// Start installs the platform hooks. Hooks run for the life of the process.
func (w *Watchdog) Start() error {
	w.startOnce.Do(func() {
		w.startErr = w.startPlatform()
		if w.startErr == nil {
			w.logger.Info().Msg("Physical input hooks started")
		}
	})
	return w.startErr
}
