// Package timer implements the server-side countdown for one focus session.
// Remaining time is always recomputed against an absolute expected-end
// instant rather than decremented per tick, so interval jitter never
// accumulates into drift.
package timer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"stilltime/api/internal/clock"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

var (
	ErrNotIdle    = errors.New("timer already running")
	ErrNotRunning = errors.New("timer not running")
	ErrNotPaused  = errors.New("timer not paused")
	ErrNotActive  = errors.New("timer not active")
)

const pollInterval = 100 * time.Millisecond

// Timer is a drift-corrected countdown. The completion callback fires at
// most once per Start, and never after End.
type Timer struct {
	mu sync.Mutex

	clk         clock.Clock
	state       State
	duration    time.Duration
	remaining   time.Duration
	expectedEnd time.Time
	startedAt   time.Time

	// generation invalidates stale tick loops: every Start/Resume bumps it
	// and the loop it spawns carries the value, so a loop that lost the
	// race exits instead of ticking a newer run.
	generation uint64
	stop       chan struct{}
	onComplete func()
}

func New(clk clock.Clock, onComplete func()) *Timer {
	return &Timer{
		clk:        clk,
		state:      StateIdle,
		onComplete: onComplete,
	}
}

// Start begins a countdown of the given duration. Valid only from Idle (or
// Completed, which Start treats as a fresh run).
func (t *Timer) Start(duration time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("invalid duration %s", duration)
	}

	t.mu.Lock()
	if t.state == StateRunning || t.state == StatePaused {
		t.mu.Unlock()
		return ErrNotIdle
	}

	now := t.clk.Now()
	t.state = StateRunning
	t.duration = duration
	t.remaining = duration
	t.startedAt = now
	t.expectedEnd = now.Add(duration)
	gen, stop := t.restartLoopLocked()
	t.mu.Unlock()

	go t.run(gen, stop)
	return nil
}

// Pause freezes the remaining time. Valid only from Running.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning {
		return ErrNotRunning
	}

	t.remaining = t.remainingLocked(t.clk.Now())
	t.state = StatePaused
	close(t.stop)
	return nil
}

// Resume re-anchors the expected end at now + frozen remaining.
func (t *Timer) Resume() error {
	t.mu.Lock()
	if t.state != StatePaused {
		t.mu.Unlock()
		return ErrNotPaused
	}

	t.state = StateRunning
	t.expectedEnd = t.clk.Now().Add(t.remaining)
	gen, stop := t.restartLoopLocked()
	t.mu.Unlock()

	go t.run(gen, stop)
	return nil
}

// End abandons the session: all timer state is discarded and the completion
// callback is not invoked. Valid from Running or Paused.
func (t *Timer) End() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateRunning && t.state != StatePaused {
		return ErrNotActive
	}

	if t.state == StateRunning {
		close(t.stop)
	}
	t.generation++
	t.resetLocked()
	return nil
}

func (t *Timer) resetLocked() {
	t.state = StateIdle
	t.duration = 0
	t.remaining = 0
	t.expectedEnd = time.Time{}
	t.startedAt = time.Time{}
}

// restartLoopLocked bumps the generation and swaps in a fresh stop channel,
// guaranteeing any prior loop is dead to the state machine before a new one
// starts.
func (t *Timer) restartLoopLocked() (uint64, chan struct{}) {
	t.generation++
	t.stop = make(chan struct{})
	return t.generation, t.stop
}

func (t *Timer) run(gen uint64, stop chan struct{}) {
	ticker := t.clk.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C():
			if done := t.tick(gen, now); done {
				return
			}
		}
	}
}

// tick recomputes remaining from the absolute end. Returns true when the
// loop should exit. The generation check makes a stale loop a no-op.
func (t *Timer) tick(gen uint64, now time.Time) bool {
	t.mu.Lock()
	if gen != t.generation || t.state != StateRunning {
		t.mu.Unlock()
		return true
	}

	t.remaining = t.remainingLocked(now)
	if t.remaining > 0 {
		t.mu.Unlock()
		return false
	}

	t.state = StateCompleted
	t.generation++
	cb := t.onComplete
	t.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

func (t *Timer) remainingLocked(now time.Time) time.Duration {
	rem := t.expectedEnd.Sub(now)
	if rem < 0 {
		return 0
	}
	return rem
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining reports the time left, live against the clock while running.
func (t *Timer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateRunning {
		return t.remainingLocked(t.clk.Now())
	}
	return t.remaining
}

func (t *Timer) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration
}

// Progress is (duration - remaining) / duration clamped to [0,1]; zero for a
// zero duration.
func (t *Timer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.duration <= 0 {
		return 0
	}

	rem := t.remaining
	if t.state == StateRunning {
		rem = t.remainingLocked(t.clk.Now())
	}

	p := float64(t.duration-rem) / float64(t.duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// FormatRemaining renders a duration as MM:SS for display, rounding up so a
// running timer shows 25:00 at start rather than 24:59.
func FormatRemaining(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
