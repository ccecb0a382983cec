package timer

import (
	"errors"
	"sync"
	"time"

	"stilltime/api/internal/clock"
)

var (
	ErrNoActiveTimer      = errors.New("no active timer")
	ErrTimerAlreadyActive = errors.New("timer already active")
)

// CompletionFunc receives a finished session. It runs on the timer's tick
// goroutine and must not block; recording failures belong to the callee.
type CompletionFunc func(userID string, durationMinutes int, theme, prompt *string)

// Manager owns at most one live countdown per user. All control paths go
// through its mutex, so pause/resume from two tabs cannot race a tick loop.
type Manager struct {
	mu         sync.Mutex
	clk        clock.Clock
	active     map[string]*activeSession
	onComplete CompletionFunc
}

type activeSession struct {
	timer  *Timer
	theme  *string
	prompt *string
}

// Snapshot is the externally visible state of a user's timer.
type Snapshot struct {
	State     State
	Duration  time.Duration
	Remaining time.Duration
	Progress  float64
}

func NewManager(clk clock.Clock, onComplete CompletionFunc) *Manager {
	return &Manager{
		clk:        clk,
		active:     make(map[string]*activeSession),
		onComplete: onComplete,
	}
}

// Start launches a countdown for the user. A user with a timer already
// Running or Paused must End it first.
func (m *Manager) Start(userID string, durationMinutes int, theme, prompt *string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.active[userID]; ok {
		switch existing.timer.State() {
		case StateRunning, StatePaused:
			return Snapshot{}, ErrTimerAlreadyActive
		}
	}

	session := &activeSession{theme: theme, prompt: prompt}
	session.timer = New(m.clk, func() {
		m.complete(userID, session)
	})

	if err := session.timer.Start(time.Duration(durationMinutes) * time.Minute); err != nil {
		return Snapshot{}, err
	}

	m.active[userID] = session
	return snapshotOf(session.timer), nil
}

func (m *Manager) Pause(userID string) (Snapshot, error) {
	session, err := m.lookup(userID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.timer.Pause(); err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(session.timer), nil
}

func (m *Manager) Resume(userID string) (Snapshot, error) {
	session, err := m.lookup(userID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := session.timer.Resume(); err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(session.timer), nil
}

// End abandons the session without recording anything.
func (m *Manager) End(userID string) error {
	m.mu.Lock()
	session, ok := m.active[userID]
	if ok {
		delete(m.active, userID)
	}
	m.mu.Unlock()

	if !ok {
		return ErrNoActiveTimer
	}
	return session.timer.End()
}

func (m *Manager) Get(userID string) (Snapshot, error) {
	session, err := m.lookup(userID)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotOf(session.timer), nil
}

func (m *Manager) lookup(userID string) (*activeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.active[userID]
	if !ok {
		return nil, ErrNoActiveTimer
	}
	return session, nil
}

// complete hands the finished session to the recorder and drops it from the
// active set. It runs on the tick goroutine after the Completed transition.
func (m *Manager) complete(userID string, session *activeSession) {
	minutes := int(session.timer.Duration() / time.Minute)

	m.mu.Lock()
	if m.active[userID] == session {
		delete(m.active, userID)
	}
	m.mu.Unlock()

	if m.onComplete != nil {
		m.onComplete(userID, minutes, session.theme, session.prompt)
	}
}

func snapshotOf(t *Timer) Snapshot {
	return Snapshot{
		State:     t.State(),
		Duration:  t.Duration(),
		Remaining: t.Remaining(),
		Progress:  t.Progress(),
	}
}
