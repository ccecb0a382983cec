package hourglass

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stilltime/api/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func activeSub(tier string) *models.Subscription {
	end := testNow.Add(30 * 24 * time.Hour)
	return &models.Subscription{
		UserID:           "u1",
		Tier:             tier,
		Status:           models.SubscriptionStatusActive,
		CurrentPeriodEnd: &end,
	}
}

func themeByID(t *testing.T, id string) Theme {
	t.Helper()
	theme, ok := ByID(id)
	require.True(t, ok, "theme %s missing from catalog", id)
	return theme
}

func TestDefaultThemeAlwaysUnlocked(t *testing.T) {
	theme := themeByID(t, DefaultThemeID)
	assert.True(t, IsUnlocked(theme, models.UserStats{}, nil, testNow))
}

func TestSessionThresholdInclusive(t *testing.T) {
	theme := themeByID(t, "breathe") // 3 sessions

	assert.False(t, IsUnlocked(theme, models.UserStats{TotalSessions: 2}, nil, testNow))
	assert.True(t, IsUnlocked(theme, models.UserStats{TotalSessions: 3}, nil, testNow))
}

func TestHoursThresholdInclusive(t *testing.T) {
	var theme Theme
	found := false
	for _, th := range Catalog {
		if th.Requirement != nil && th.Requirement.Kind == RequirementHours && th.Requirement.Value == 50 {
			theme = th
			found = true
			break
		}
	}
	require.True(t, found, "no 50-hour theme in catalog")

	assert.False(t, IsUnlocked(theme, models.UserStats{TotalHours: 49}, nil, testNow))
	assert.True(t, IsUnlocked(theme, models.UserStats{TotalHours: 50}, nil, testNow))
}

func TestSubscriptionThemes(t *testing.T) {
	for _, theme := range Catalog {
		if theme.Requirement == nil || theme.Requirement.Kind != RequirementSubscription {
			continue
		}
		assert.False(t, IsUnlocked(theme, models.UserStats{}, nil, testNow), "%s unlocked for free user", theme.ID)
		assert.True(t, IsUnlocked(theme, models.UserStats{}, activeSub("focus"), testNow), "%s locked for paid user", theme.ID)
	}
}

func TestResolveSelectionFallsBackWhenLapsed(t *testing.T) {
	var subTheme Theme
	for _, th := range Catalog {
		if th.Requirement != nil && th.Requirement.Kind == RequirementSubscription {
			subTheme = th
			break
		}
	}
	require.NotEmpty(t, subTheme.ID)

	sub := activeSub("premium")
	resolved := ResolveSelection(subTheme.ID, models.UserStats{}, sub, testNow)
	assert.Equal(t, subTheme.ID, resolved.ID)

	// Subscription lapses: the stored selection resolves to the default.
	lapsed := testNow.Add(-time.Hour)
	sub.CurrentPeriodEnd = &lapsed
	resolved = ResolveSelection(subTheme.ID, models.UserStats{}, sub, testNow)
	assert.Equal(t, DefaultThemeID, resolved.ID)
}

func TestResolveSelectionUnknownID(t *testing.T) {
	resolved := ResolveSelection("no-such-theme", models.UserStats{}, nil, testNow)
	assert.Equal(t, DefaultThemeID, resolved.ID)
}

func TestCatalogIntegrity(t *testing.T) {
	seen := make(map[string]bool, len(Catalog))
	for _, theme := range Catalog {
		assert.False(t, seen[theme.ID], "duplicate theme id %s", theme.ID)
		seen[theme.ID] = true
		assert.NotEmpty(t, theme.VideoURL, "%s has no video", theme.ID)
	}
	assert.Len(t, Catalog, 14)
	assert.True(t, seen[DefaultThemeID])
}
