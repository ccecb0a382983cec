package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCompletion struct {
	userID  string
	minutes int
	theme   *string
	prompt  *string
}

func TestManagerStartAndStatus(t *testing.T) {
	m := NewManager(fakeClock(), nil)

	theme := "breathe"
	snap, err := m.Start("user-1", 25, &theme, nil)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, 25*time.Minute, snap.Duration)

	got, err := m.Get("user-1")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, got.State)

	_, err = m.Get("user-2")
	assert.ErrorIs(t, err, ErrNoActiveTimer)
}

func TestManagerRejectsSecondTimer(t *testing.T) {
	m := NewManager(fakeClock(), nil)

	_, err := m.Start("user-1", 25, nil, nil)
	require.NoError(t, err)

	_, err = m.Start("user-1", 10, nil, nil)
	assert.ErrorIs(t, err, ErrTimerAlreadyActive)

	// Other users are unaffected.
	_, err = m.Start("user-2", 10, nil, nil)
	assert.NoError(t, err)
}

func TestManagerPauseResume(t *testing.T) {
	clk := fakeClock()
	m := NewManager(clk, nil)

	_, err := m.Start("user-1", 25, nil, nil)
	require.NoError(t, err)

	clk.Advance(5 * time.Minute)
	snap, err := m.Pause("user-1")
	require.NoError(t, err)
	assert.Equal(t, StatePaused, snap.State)
	assert.Equal(t, 20*time.Minute, snap.Remaining)

	snap, err = m.Resume("user-1")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, snap.State)

	_, err = m.Pause("user-2")
	assert.ErrorIs(t, err, ErrNoActiveTimer)
}

func TestManagerEndDiscards(t *testing.T) {
	var completions []recordedCompletion
	m := NewManager(fakeClock(), func(userID string, minutes int, theme, prompt *string) {
		completions = append(completions, recordedCompletion{userID, minutes, theme, prompt})
	})

	_, err := m.Start("user-1", 25, nil, nil)
	require.NoError(t, err)
	require.NoError(t, m.End("user-1"))

	_, err = m.Get("user-1")
	assert.ErrorIs(t, err, ErrNoActiveTimer)
	assert.Empty(t, completions)

	assert.ErrorIs(t, m.End("user-1"), ErrNoActiveTimer)
}

func TestManagerCompletionCallback(t *testing.T) {
	clk := fakeClock()
	var completions []recordedCompletion
	m := NewManager(clk, func(userID string, minutes int, theme, prompt *string) {
		completions = append(completions, recordedCompletion{userID, minutes, theme, prompt})
	})

	theme := "ocean-depths"
	prompt := "deep work"
	_, err := m.Start("user-1", 25, &theme, &prompt)
	require.NoError(t, err)

	clk.Advance(25 * time.Minute)
	m.mu.Lock()
	session := m.active["user-1"]
	m.mu.Unlock()
	fireTick(session.timer, clk.Now())

	require.Len(t, completions, 1)
	assert.Equal(t, "user-1", completions[0].userID)
	assert.Equal(t, 25, completions[0].minutes)
	assert.Equal(t, &theme, completions[0].theme)
	assert.Equal(t, &prompt, completions[0].prompt)

	// Completed sessions leave the active set; a new one may start.
	_, err = m.Get("user-1")
	assert.ErrorIs(t, err, ErrNoActiveTimer)
	_, err = m.Start("user-1", 10, nil, nil)
	assert.NoError(t, err)
}
