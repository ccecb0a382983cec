package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stilltime/api/internal/models"
)

var day1 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestEvaluateNilStateAllows(t *testing.T) {
	g := NewGate(2, 7)

	d := g.Evaluate(nil, day1)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.SessionsRemaining)
	assert.Equal(t, 7, d.DaysRemaining)
}

func TestDailyLimit(t *testing.T) {
	g := NewGate(2, 7)

	state := g.Record(nil, "u1", day1)
	d := g.Evaluate(&state, day1.Add(time.Hour))
	require.True(t, d.Allowed)
	assert.Equal(t, 0, d.SessionsRemaining)

	state = g.Record(&state, "u1", day1.Add(time.Hour))
	d = g.Evaluate(&state, day1.Add(2*time.Hour))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonDailyLimit, d.Reason)
}

func TestDayRolloverResetsQuota(t *testing.T) {
	g := NewGate(2, 7)

	state := g.Record(nil, "u1", day1)
	state = g.Record(&state, "u1", day1.Add(time.Hour))
	require.False(t, g.Evaluate(&state, day1.Add(2*time.Hour)).Allowed)

	nextDay := day1.Add(24 * time.Hour)
	d := g.Evaluate(&state, nextDay)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.SessionsRemaining)

	// Recording on the new day restarts the counter at 1, total keeps growing.
	state = g.Record(&state, "u1", nextDay)
	assert.Equal(t, 1, state.SessionsUsedToday)
	assert.Equal(t, 3, state.TotalTrialSessions)
}

func TestTrialWindowExpires(t *testing.T) {
	g := NewGate(2, 7)
	state := g.Record(nil, "u1", day1)

	d := g.Evaluate(&state, day1.Add(6*24*time.Hour))
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.DaysRemaining)

	d = g.Evaluate(&state, day1.Add(7*24*time.Hour))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonTrialExpired, d.Reason)

	// Expiry wins even on a fresh calendar day with zero usage.
	d = g.Evaluate(&state, day1.Add(30*24*time.Hour))
	assert.False(t, d.Allowed)
	assert.Equal(t, ReasonTrialExpired, d.Reason)
}

func TestRecordInitializesState(t *testing.T) {
	g := NewGate(2, 7)
	state := g.Record(nil, "u1", day1)

	assert.Equal(t, "u1", state.UserID)
	assert.Equal(t, day1, state.FirstUsedAt)
	assert.Equal(t, 1, state.SessionsUsedToday)
	assert.Equal(t, Day(day1), state.LastSessionDay)
	assert.Equal(t, 1, state.TotalTrialSessions)
}

func TestRecordDoesNotMutateInput(t *testing.T) {
	g := NewGate(2, 7)
	original := models.TrialState{
		UserID:             "u1",
		FirstUsedAt:        day1,
		SessionsUsedToday:  1,
		LastSessionDay:     Day(day1),
		TotalTrialSessions: 1,
	}

	_ = g.Record(&original, "u1", day1.Add(time.Hour))
	assert.Equal(t, 1, original.SessionsUsedToday)
	assert.Equal(t, 1, original.TotalTrialSessions)
}

func TestNewGateDefaults(t *testing.T) {
	g := NewGate(0, 0)
	d := g.Evaluate(nil, day1)
	assert.Equal(t, DefaultDailySessionLimit-1, d.SessionsRemaining)
	assert.Equal(t, DefaultDurationDays, d.DaysRemaining)
}
