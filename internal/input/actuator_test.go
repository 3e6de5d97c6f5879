package input

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend records every call as a string
type recordingBackend struct {
	mu    sync.Mutex
	calls []string
	fail  error
	hook  func()

	inFlight atomic.Int32
	overlap  atomic.Bool
}

func (b *recordingBackend) record(call string) error {
	if b.inFlight.Add(1) > 1 {
		b.overlap.Store(true)
	}
	defer b.inFlight.Add(-1)

	if b.hook != nil {
		b.hook()
	}
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
	return b.fail
}

func (b *recordingBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *recordingBackend) MoveRelative(dx, dy int) error {
	return b.record(fmt.Sprintf("move %d %d", dx, dy))
}
func (b *recordingBackend) Click(button Button) error { return b.record("click " + string(button)) }
func (b *recordingBackend) Scroll(amount int) error {
	return b.record(fmt.Sprintf("scroll %d", amount))
}
func (b *recordingBackend) TypeText(text string) error { return b.record("type " + text) }
func (b *recordingBackend) KeyTap(key string) error    { return b.record("tap " + key) }
func (b *recordingBackend) KeyDown(key string) error   { return b.record("down " + key) }
func (b *recordingBackend) KeyUp(key string) error     { return b.record("up " + key) }

func newTestActuator() (*Actuator, *recordingBackend) {
	b := &recordingBackend{}
	return NewActuator(b, zerolog.Nop()), b
}

func TestMoveRelative(t *testing.T) {
	a, b := newTestActuator()
	a.MoveRelative(-50, 12)
	assert.Equal(t, []string{"move -50 12"}, b.Calls())
}

func TestClickOnlyLeftAndRight(t *testing.T) {
	a, b := newTestActuator()
	a.Click(ButtonLeft)
	a.Click(ButtonRight)
	a.Click(Button("middle"))
	assert.Equal(t, []string{"click left", "click right"}, b.Calls())
}

func TestScrollInvertsAndTruncates(t *testing.T) {
	a, b := newTestActuator()
	a.Scroll(3.9)
	a.Scroll(-2.5)
	a.Scroll(0.4) // truncates to zero, nothing to do
	assert.Equal(t, []string{"scroll -3", "scroll 2"}, b.Calls())
}

func TestPressKeySingleCharIsTyped(t *testing.T) {
	a, b := newTestActuator()
	a.PressKey("a")
	a.PressKey("Z")
	a.PressKey("é")
	assert.Equal(t, []string{"type a", "type Z", "type é"}, b.Calls())
}

func TestPressKeyNamedKeyIsLowerCased(t *testing.T) {
	a, b := newTestActuator()
	a.PressKey("Enter")
	a.PressKey("TAB")
	a.PressKey("ArrowUp")
	a.PressKey("volumeup")
	assert.Equal(t, []string{"tap enter", "tap tab", "tap up", "tap audio_vol_up"}, b.Calls())
}

func TestPressKeyUnknownNameFailsSilently(t *testing.T) {
	a, b := newTestActuator()
	assert.NotPanics(t, func() { a.PressKey("definitely-not-a-key") })
	assert.Empty(t, b.Calls())
}

func TestHotkeyEmptyIsRejected(t *testing.T) {
	a, b := newTestActuator()
	assert.ErrorIs(t, a.Hotkey(nil), ErrNoKeys)
	assert.ErrorIs(t, a.Hotkey([]string{}), ErrNoKeys)
	assert.Empty(t, b.Calls())
}

func TestHotkeySingleKeyMatchesPressKey(t *testing.T) {
	a1, b1 := newTestActuator()
	a2, b2 := newTestActuator()

	for _, key := range []string{"volumeup", "x", "Escape"} {
		require.NoError(t, a1.Hotkey([]string{key}))
		a2.PressKey(key)
	}
	assert.Equal(t, b2.Calls(), b1.Calls())
}

func TestHotkeyChordOrder(t *testing.T) {
	a, b := newTestActuator()
	require.NoError(t, a.Hotkey([]string{"ctrl", "win", "Right"}))
	assert.Equal(t, []string{
		"down ctrl", "down cmd", "down right",
		"up right", "up cmd", "up ctrl",
	}, b.Calls())
}

func TestHotkeyWithUnknownKeyPressesNothing(t *testing.T) {
	a, b := newTestActuator()
	require.NoError(t, a.Hotkey([]string{"ctrl", "bogus"}))
	assert.Empty(t, b.Calls())
}

func TestBackendFailureIsSwallowed(t *testing.T) {
	a, b := newTestActuator()
	b.fail = errors.New("os refused")

	assert.NotPanics(t, func() {
		a.MoveRelative(1, 1)
		a.PressKey("enter")
	})
	assert.Len(t, b.Calls(), 2)
	assert.False(t, a.Busy(), "lock must be released after a failure")
}

func TestBackendPanicReleasesLock(t *testing.T) {
	a, b := newTestActuator()
	b.hook = func() { panic("boom") }

	assert.NotPanics(t, func() { a.Click(ButtonLeft) })
	assert.False(t, a.Busy())
}

func TestBusyDuringActuation(t *testing.T) {
	a, b := newTestActuator()
	entered := make(chan struct{})
	release := make(chan struct{})
	b.hook = func() {
		close(entered)
		<-release
	}

	done := make(chan struct{})
	go func() {
		a.MoveRelative(1, 1)
		close(done)
	}()

	<-entered
	assert.True(t, a.Busy())
	close(release)
	<-done
	assert.False(t, a.Busy())
}

func TestActuationsNeverInterleave(t *testing.T) {
	a, b := newTestActuator()
	b.hook = func() { time.Sleep(time.Millisecond) }

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				a.MoveRelative(i, i)
			} else {
				_ = a.Hotkey([]string{"alt", "tab"})
			}
		}(i)
	}
	wg.Wait()

	assert.False(t, b.overlap.Load())
	assert.Len(t, b.Calls(), 4+4*4)
}
