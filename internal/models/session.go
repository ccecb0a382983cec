package models

import "time"

// FocusSession is one completed timed focus interval. Rows are immutable
// once written and never deleted by the application.
type FocusSession struct {
	ID              string
	UserID          string
	DurationMinutes int
	CompletedAt     time.Time
	HourglassTheme  *string
	CustomPrompt    *string
	Reflection      *string
}

// UserStats is the cumulative per-user progress record. TotalHours is
// derived from TotalMinutes on every read and never stored.
type UserStats struct {
	UserID            string
	TotalSessions     int
	TotalMinutes      int
	TotalHours        int
	FirstSessionAt    *time.Time
	LastSessionAt     *time.Time
	MilestonesReached []string
}

// HasMilestone reports membership in the append-only milestone set.
func (s UserStats) HasMilestone(id string) bool {
	for _, m := range s.MilestonesReached {
		if m == id {
			return true
		}
	}
	return false
}

// Preferences holds the user's timer presentation choices.
type Preferences struct {
	UserID              string
	SelectedHourglassID string
	Theme               string
	EnableAnimations    bool
	EnableSound         bool
	EnableJournaling    bool
	UpdatedAt           time.Time
}
