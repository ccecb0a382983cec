// Package trial enforces the anonymous-user usage allowance: a bounded
// number of sessions per calendar day inside a fixed trial window. The daily
// counter is never reset by a job; it is reinterpreted lazily against
// today's date on every check.
package trial

import (
	"time"

	"stilltime/api/internal/models"
)

const (
	DefaultDailySessionLimit = 2
	DefaultDurationDays      = 7

	dayFormat = "2006-01-02"
)

type Reason string

const (
	ReasonTrialExpired Reason = "trial_expired"
	ReasonDailyLimit   Reason = "daily_limit"
)

type Decision struct {
	Allowed           bool
	Reason            Reason
	SessionsRemaining int
	DaysRemaining     int
}

// Gate evaluates and mutates trial state. It is pure over (state, now);
// persistence lives in the caller.
type Gate struct {
	dailyLimit   int
	durationDays int
}

func NewGate(dailyLimit, durationDays int) Gate {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailySessionLimit
	}
	if durationDays <= 0 {
		durationDays = DefaultDurationDays
	}
	return Gate{dailyLimit: dailyLimit, durationDays: durationDays}
}

// Evaluate decides whether a session may start. A nil state means the user
// has never started a trial session and is allowed with full quota.
func (g Gate) Evaluate(state *models.TrialState, now time.Time) Decision {
	if state == nil {
		return Decision{
			Allowed:           true,
			SessionsRemaining: g.dailyLimit - 1,
			DaysRemaining:     g.durationDays,
		}
	}

	daysSinceFirst := int(now.Sub(state.FirstUsedAt).Hours() / 24)
	if daysSinceFirst >= g.durationDays {
		return Decision{Allowed: false, Reason: ReasonTrialExpired}
	}

	used := sessionsUsedOn(state, now)
	if used >= g.dailyLimit {
		return Decision{
			Allowed:       false,
			Reason:        ReasonDailyLimit,
			DaysRemaining: g.durationDays - daysSinceFirst,
		}
	}

	return Decision{
		Allowed:           true,
		SessionsRemaining: g.dailyLimit - used - 1,
		DaysRemaining:     g.durationDays - daysSinceFirst,
	}
}

// Record returns the state after one allowed session start, initializing it
// on first use. The stored daily counter resets to 1 when the calendar day
// has rolled over since the last session.
func (g Gate) Record(state *models.TrialState, userID string, now time.Time) models.TrialState {
	today := Day(now)

	if state == nil {
		return models.TrialState{
			UserID:             userID,
			FirstUsedAt:        now,
			SessionsUsedToday:  1,
			LastSessionDay:     today,
			TotalTrialSessions: 1,
			UpdatedAt:          now,
		}
	}

	next := *state
	if state.LastSessionDay != today {
		next.SessionsUsedToday = 1
	} else {
		next.SessionsUsedToday++
	}
	next.LastSessionDay = today
	next.TotalTrialSessions++
	next.UpdatedAt = now
	return next
}

// sessionsUsedOn applies the lazy day-rollover: a stored counter from a
// previous calendar day counts as zero.
func sessionsUsedOn(state *models.TrialState, now time.Time) int {
	if state.LastSessionDay != Day(now) {
		return 0
	}
	return state.SessionsUsedToday
}

// Day formats the calendar day used for quota bookkeeping.
func Day(t time.Time) string {
	return t.Format(dayFormat)
}
