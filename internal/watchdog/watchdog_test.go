package watchdog

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type fakeActuator struct{ busy atomic.Bool }

func (f *fakeActuator) Busy() bool { return f.busy.Load() }

type fakeRecorder struct {
	mu    sync.Mutex
	times []time.Time
}

func (f *fakeRecorder) RecordPhysicalInput(at time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.times = append(f.times, at)
}

func (f *fakeRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.times)
}

func newTestWatchdog() (*Watchdog, *fakeActuator, *fakeRecorder) {
	act := &fakeActuator{}
	rec := &fakeRecorder{}
	w := New(act, rec, zerolog.Nop())
	return w, act, rec
}

func TestObserveRecordsWhenIdle(t *testing.T) {
	w, _, rec := newTestWatchdog()
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	assert.True(t, w.Observe())
	assert.Equal(t, []time.Time{fixed}, rec.times)
}

func TestObserveSkipsWhileActuatorBusy(t *testing.T) {
	w, act, rec := newTestWatchdog()
	act.busy.Store(true)

	assert.False(t, w.Observe())
	assert.Zero(t, rec.count())

	act.busy.Store(false)
	assert.True(t, w.Observe())
	assert.Equal(t, 1, rec.count())
}

func TestReleaseHotkeyFires(t *testing.T) {
	w, _, _ := newTestWatchdog()
	fired := make(chan struct{}, 4)
	w.Chords().Register("Ctrl+Alt+Shift+D", func() { fired <- struct{}{} })

	for _, k := range []string{"CTRL", "ALT", "SHIFT", "D"} {
		w.KeyEvent(k, true)
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("release hotkey did not fire")
	}
}

func TestInjectedPressesDoNotTriggerHotkeys(t *testing.T) {
	w, act, _ := newTestWatchdog()
	var fired atomic.Int32
	w.Chords().Register("Ctrl+D", func() { fired.Add(1) })

	act.busy.Store(true)
	w.KeyEvent("CTRL", true)
	w.KeyEvent("D", true)
	act.busy.Store(false)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestReleaseIsTrackedWhileBusy(t *testing.T) {
	w, act, _ := newTestWatchdog()
	var fired atomic.Int32
	w.Chords().Register("Ctrl+D", func() { fired.Add(1) })

	w.KeyEvent("CTRL", true)
	act.busy.Store(true)
	w.KeyEvent("CTRL", false)
	act.busy.Store(false)
	w.KeyEvent("D", true)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, fired.Load(), "ctrl was released, chord must not match")
}
