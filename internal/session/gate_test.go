package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate() (*Gate, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	g := NewGate(zerolog.Nop())
	g.SetClock(clock.now)
	return g, clock
}

func TestAdmitFirstComerBindsSession(t *testing.T) {
	g, _ := newTestGate()

	require.NoError(t, g.Admit("10.0.0.2"))
	st := g.Status()
	assert.True(t, st.Connected)
	assert.Equal(t, "10.0.0.2", st.Origin)
	assert.NotEmpty(t, st.SessionID)

	err := g.Admit("10.0.0.3")
	assert.ErrorIs(t, err, ErrAnotherDevice)
	assert.ErrorIs(t, err, ErrAdmissionDenied)

	// The bound origin keeps being admitted
	assert.NoError(t, g.Admit("10.0.0.2"))
}

func TestAdmitRejectsSecondOriginUntilReset(t *testing.T) {
	g, _ := newTestGate()

	require.NoError(t, g.Admit("a"))
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, g.Admit("b"), ErrAdmissionDenied)
	}

	g.Reset()
	assert.NoError(t, g.Admit("b"))
	assert.ErrorIs(t, g.Admit("a"), ErrAnotherDevice)
}

func TestBlockedOriginNeverAdmitted(t *testing.T) {
	g, _ := newTestGate()
	g.SetBlockList([]string{" 10.0.0.9 ", "", "10.0.0.8"})

	err := g.Admit("10.0.0.9")
	assert.ErrorIs(t, err, ErrBlocked)
	assert.False(t, g.Status().Connected, "blocked origin must not bind the session")

	require.NoError(t, g.Admit("10.0.0.2"))

	// Blocking the bound origin locks it out as well
	g.SetBlockList([]string{"10.0.0.2"})
	assert.ErrorIs(t, g.Admit("10.0.0.2"), ErrBlocked)
	assert.True(t, g.IsBlocked("10.0.0.2"))
}

func TestAdmitIsIdempotentForBoundOrigin(t *testing.T) {
	g, _ := newTestGate()

	require.NoError(t, g.Admit("a"))
	first := g.Status()
	require.NoError(t, g.Admit("a"))
	second := g.Status()

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, first.BoundAt, second.BoundAt)
}

func TestReleaseOnlyByHolder(t *testing.T) {
	g, _ := newTestGate()
	resets := 0
	g.OnReset(func() { resets++ })

	require.NoError(t, g.Admit("a"))
	assert.False(t, g.Release("b"))
	assert.True(t, g.Status().Connected)
	assert.Equal(t, 0, resets)

	assert.True(t, g.Release("a"))
	assert.False(t, g.Status().Connected)
	assert.Equal(t, 1, resets)
}

func TestCooldownNoPhysicalInput(t *testing.T) {
	g, _ := newTestGate()
	g.SetCooldown(5 * time.Second)

	assert.NoError(t, g.CheckCooldown())
}

func TestCooldownZeroDurationNeverSuppresses(t *testing.T) {
	g, clock := newTestGate()
	g.RecordPhysicalInput(clock.now())

	assert.NoError(t, g.CheckCooldown())
}

func TestCooldownRemainingDecreasesAndExpires(t *testing.T) {
	g, clock := newTestGate()
	g.SetCooldown(3 * time.Second)
	g.RecordPhysicalInput(clock.now())

	var last time.Duration = 1 << 62
	for i := 0; i < 5; i++ {
		err := g.CheckCooldown()
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrCooldownActive))

		var ce *CooldownError
		require.ErrorAs(t, err, &ce)
		assert.Less(t, ce.Remaining, last)
		last = ce.Remaining

		clock.advance(500 * time.Millisecond)
	}

	// 2.5s elapsed, 0.5s left
	clock.advance(500 * time.Millisecond)
	assert.NoError(t, g.CheckCooldown(), "request at the exact expiry instant is allowed")
}

func TestCooldownErrorMessage(t *testing.T) {
	err := &CooldownError{Remaining: 2340 * time.Millisecond}
	assert.Equal(t, "Cooldown: 2.3s", err.Error())
	assert.Equal(t, 2.3, err.RemainingSeconds())
}

func TestSetCooldownClampsNegative(t *testing.T) {
	g, _ := newTestGate()
	g.SetCooldown(-time.Second)
	assert.Equal(t, time.Duration(0), g.Cooldown())
}

func TestStatusReportsCooldown(t *testing.T) {
	g, clock := newTestGate()
	g.SetCooldown(2 * time.Second)
	g.RecordPhysicalInput(clock.now())
	clock.advance(time.Second)

	assert.Equal(t, time.Second, g.Status().CooldownRemaining)
	assert.Equal(t, clock.now().Add(-time.Second).UnixNano(), g.LastPhysicalInput().UnixNano())
}

func TestLogLinesCarryComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	g := NewGate(zerolog.New(&buf))

	require.NoError(t, g.Admit("10.0.0.2"))
	g.Reset()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
		assert.Contains(t, line, `"component":"session"`)
	}
}
