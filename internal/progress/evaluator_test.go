package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stilltime/api/internal/models"
)

func milestoneIDs(ms []Milestone) []string {
	ids := make([]string, 0, len(ms))
	for _, m := range ms {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestFirstSessionMilestone(t *testing.T) {
	old := models.UserStats{}
	now := models.UserStats{TotalSessions: 1, TotalMinutes: 25}

	reached := NewlyReached(old, now)
	assert.Equal(t, []string{"first-session"}, milestoneIDs(reached))
}

func TestThresholdCrossingReportsOnce(t *testing.T) {
	old := models.UserStats{TotalSessions: 2, TotalMinutes: 50, MilestonesReached: []string{"first-session"}}
	now := models.UserStats{TotalSessions: 3, TotalMinutes: 75, MilestonesReached: []string{"first-session"}}

	reached := NewlyReached(old, now)
	require.Equal(t, []string{"three-sessions"}, milestoneIDs(reached))

	// Three sessions unlocks the symbolic library feature gate.
	require.NotNil(t, reached[0].Reward)
	assert.Equal(t, RewardFeature, reached[0].Reward.Kind)
	assert.Equal(t, "phase2_unlock", reached[0].Reward.ID)

	// Once banked, re-evaluating the same stats yields nothing.
	now.MilestonesReached = append(now.MilestonesReached, "three-sessions")
	assert.Empty(t, NewlyReached(now, now))
}

func TestMultipleMilestonesInOneJump(t *testing.T) {
	// A user whose stats land past several thresholds at once banks all of
	// them, in catalog order.
	old := models.UserStats{MilestonesReached: []string{}}
	now := models.UserStats{TotalSessions: 12, TotalMinutes: 660, TotalHours: 11}

	reached := milestoneIDs(NewlyReached(old, now))
	assert.Equal(t, []string{"first-session", "three-sessions", "ten-sessions", "ten-hours"}, reached)
}

func TestHoursMilestoneUsesDerivedHours(t *testing.T) {
	old := models.UserStats{TotalSessions: 100, TotalHours: 49,
		MilestonesReached: []string{"first-session", "three-sessions", "ten-sessions",
			"twentyfive-sessions", "fifty-sessions", "hundred-sessions", "ten-hours", "twentyfive-hours"}}
	now := old
	now.TotalSessions = 101
	now.TotalHours = 50

	assert.Equal(t, []string{"fifty-hours"}, milestoneIDs(NewlyReached(old, now)))
}

func TestDeriveHours(t *testing.T) {
	assert.Equal(t, 0, DeriveHours(59))
	assert.Equal(t, 1, DeriveHours(60))
	assert.Equal(t, 1, DeriveHours(119))
	assert.Equal(t, 10, DeriveHours(600))
}

func TestCatalogOrderAndUniqueness(t *testing.T) {
	seen := make(map[string]bool, len(Milestones))
	for _, m := range Milestones {
		assert.False(t, seen[m.ID], "duplicate milestone id %s", m.ID)
		seen[m.ID] = true
		assert.Positive(t, m.Threshold)
		assert.NotEmpty(t, m.Message)
	}
	assert.Len(t, Milestones, 13)
}
