package hourglass

import (
	"time"

	"stilltime/api/internal/models"
	"stilltime/api/internal/subscription"
)

// IsUnlocked reports whether the user qualifies for a theme. Thresholds are
// inclusive: 50 total hours unlocks an hours>=50 theme.
func IsUnlocked(theme Theme, stats models.UserStats, sub *models.Subscription, now time.Time) bool {
	req := theme.Requirement
	if req == nil {
		return true
	}

	switch req.Kind {
	case RequirementSessions:
		return stats.TotalSessions >= req.Value
	case RequirementHours:
		return stats.TotalHours >= req.Value
	case RequirementSubscription:
		return subscription.IsPaid(sub, now)
	default:
		return false
	}
}

// ResolveSelection validates a stored theme choice against the user's
// current progress and subscription. A selection the user no longer
// qualifies for (for instance a lapsed subscription) falls back to the
// default theme instead of erroring.
func ResolveSelection(selectedID string, stats models.UserStats, sub *models.Subscription, now time.Time) Theme {
	theme, ok := ByID(selectedID)
	if !ok || !IsUnlocked(theme, stats, sub, now) {
		def, _ := ByID(DefaultThemeID)
		return def
	}
	return theme
}
