package models

import "time"

// TrialState tracks the usage allowance of an anonymous user. It is deleted
// outright when the identity is upgraded; quota never carries over into a
// registered account.
type TrialState struct {
	UserID             string
	FirstUsedAt        time.Time
	SessionsUsedToday  int
	LastSessionDay     string // calendar day, YYYY-MM-DD
	TotalTrialSessions int
	UpdatedAt          time.Time
}
