package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stilltime/api/internal/clock"
)

func fakeClock() *clock.Fake {
	return clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
}

// fireTick drives one poll cycle directly so tests do not depend on the
// scheduling of the background loop.
func fireTick(tm *Timer, now time.Time) {
	tm.mu.Lock()
	gen := tm.generation
	tm.mu.Unlock()
	tm.tick(gen, now)
}

func TestStartRejectsInvalidDuration(t *testing.T) {
	tm := New(fakeClock(), nil)
	assert.Error(t, tm.Start(0))
	assert.Error(t, tm.Start(-time.Minute))
}

func TestStartWhileActiveFails(t *testing.T) {
	tm := New(fakeClock(), nil)
	require.NoError(t, tm.Start(25*time.Minute))
	assert.ErrorIs(t, tm.Start(10*time.Minute), ErrNotIdle)

	require.NoError(t, tm.Pause())
	assert.ErrorIs(t, tm.Start(10*time.Minute), ErrNotIdle)
}

func TestRemainingTracksClock(t *testing.T) {
	clk := fakeClock()
	tm := New(clk, nil)
	require.NoError(t, tm.Start(25*time.Minute))

	assert.Equal(t, 25*time.Minute, tm.Remaining())
	assert.Equal(t, 0.0, tm.Progress())

	clk.Advance(10 * time.Minute)
	assert.Equal(t, 15*time.Minute, tm.Remaining())
	assert.InDelta(t, 0.4, tm.Progress(), 0.001)
}

func TestPauseFreezesRemaining(t *testing.T) {
	clk := fakeClock()
	tm := New(clk, nil)
	require.NoError(t, tm.Start(25*time.Minute))

	clk.Advance(5 * time.Minute)
	require.NoError(t, tm.Pause())
	assert.Equal(t, StatePaused, tm.State())
	assert.Equal(t, 20*time.Minute, tm.Remaining())

	// Paused time does not burn down.
	clk.Advance(time.Hour)
	assert.Equal(t, 20*time.Minute, tm.Remaining())
}

func TestResumeReanchorsDeadline(t *testing.T) {
	clk := fakeClock()
	tm := New(clk, nil)
	require.NoError(t, tm.Start(25*time.Minute))

	clk.Advance(5 * time.Minute)
	require.NoError(t, tm.Pause())
	clk.Advance(time.Hour)
	require.NoError(t, tm.Resume())

	assert.Equal(t, StateRunning, tm.State())
	assert.Equal(t, 20*time.Minute, tm.Remaining())

	clk.Advance(10 * time.Minute)
	assert.Equal(t, 10*time.Minute, tm.Remaining())
}

func TestPauseResumeStateErrors(t *testing.T) {
	tm := New(fakeClock(), nil)
	assert.ErrorIs(t, tm.Pause(), ErrNotRunning)
	assert.ErrorIs(t, tm.Resume(), ErrNotPaused)
	assert.ErrorIs(t, tm.End(), ErrNotActive)

	require.NoError(t, tm.Start(time.Minute))
	assert.ErrorIs(t, tm.Resume(), ErrNotPaused)
}

func TestCompletionFiresExactlyOnce(t *testing.T) {
	clk := fakeClock()
	var fired atomic.Int32
	tm := New(clk, func() { fired.Add(1) })
	require.NoError(t, tm.Start(time.Minute))

	clk.Advance(time.Minute)
	fireTick(tm, clk.Now())

	assert.Equal(t, StateCompleted, tm.State())
	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, 1.0, tm.Progress())

	// A stale loop delivering another tick is a no-op.
	fireTick(tm, clk.Now().Add(time.Hour))
	assert.Equal(t, int32(1), fired.Load())
}

func TestEndDiscardsWithoutCallback(t *testing.T) {
	clk := fakeClock()
	var fired atomic.Int32
	tm := New(clk, func() { fired.Add(1) })
	require.NoError(t, tm.Start(time.Minute))

	require.NoError(t, tm.End())
	assert.Equal(t, StateIdle, tm.State())

	clk.Advance(time.Hour)
	fireTick(tm, clk.Now())
	assert.Equal(t, int32(0), fired.Load())
}

func TestRestartAfterCompletion(t *testing.T) {
	clk := fakeClock()
	tm := New(clk, nil)
	require.NoError(t, tm.Start(time.Minute))
	clk.Advance(time.Minute)
	fireTick(tm, clk.Now())
	require.Equal(t, StateCompleted, tm.State())

	require.NoError(t, tm.Start(5*time.Minute))
	assert.Equal(t, StateRunning, tm.State())
	assert.Equal(t, 5*time.Minute, tm.Remaining())
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "25:00", FormatRemaining(25*time.Minute))
	assert.Equal(t, "25:00", FormatRemaining(24*time.Minute+59*time.Second+100*time.Millisecond))
	assert.Equal(t, "00:01", FormatRemaining(200*time.Millisecond))
	assert.Equal(t, "00:00", FormatRemaining(0))
	assert.Equal(t, "00:00", FormatRemaining(-time.Second))
}
