package progress

import "stilltime/api/internal/models"

// NewlyReached returns every catalog milestone that the new stats satisfy
// and the old stats had not already banked, in catalog order. The caller
// records the returned ids; recording an id twice is a no-op at the store,
// so re-running the same old/new pair after recording yields nothing.
func NewlyReached(old, new models.UserStats) []Milestone {
	var reached []Milestone
	for _, m := range Milestones {
		if old.HasMilestone(m.ID) {
			continue
		}
		if satisfies(m, new) {
			reached = append(reached, m)
		}
	}
	return reached
}

func satisfies(m Milestone, stats models.UserStats) bool {
	switch m.Kind {
	case KindSessions:
		return stats.TotalSessions >= m.Threshold
	case KindHours:
		return stats.TotalHours >= m.Threshold
	default:
		return false
	}
}

// DeriveHours enforces the read-time invariant totalHours ==
// floor(totalMinutes/60) regardless of what a stale row carried.
func DeriveHours(totalMinutes int) int {
	return totalMinutes / 60
}
