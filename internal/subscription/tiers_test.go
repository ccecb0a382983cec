package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stilltime/api/internal/models"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func subWith(tier string, status models.SubscriptionStatus, periodEnd *time.Time) *models.Subscription {
	return &models.Subscription{
		UserID:           "u1",
		Tier:             tier,
		Status:           status,
		CurrentPeriodEnd: periodEnd,
	}
}

func TestTierOfAbsentAndInactive(t *testing.T) {
	assert.Equal(t, TierFree, TierOf(nil, testNow))

	assert.Equal(t, TierFree, TierOf(subWith("premium", models.SubscriptionStatusCanceled, nil), testNow))
	assert.Equal(t, TierFree, TierOf(subWith("premium", models.SubscriptionStatusPastDue, nil), testNow))
}

func TestTierOfLapsedPeriod(t *testing.T) {
	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	assert.Equal(t, TierFree, TierOf(subWith("focus", models.SubscriptionStatusActive, &past), testNow))
	assert.Equal(t, TierFocus, TierOf(subWith("focus", models.SubscriptionStatusActive, &future), testNow))

	// Lifetime rows carry no period end.
	assert.Equal(t, TierLifetime, TierOf(subWith("lifetime", models.SubscriptionStatusActive, nil), testNow))
}

func TestParseTierUnknownDegradesToFree(t *testing.T) {
	assert.Equal(t, TierFree, ParseTier("platinum"))
	assert.Equal(t, TierFree, ParseTier(""))
	assert.Equal(t, TierStudent, ParseTier("student"))
}

func TestFeatureMatrix(t *testing.T) {
	free := FeaturesOf(TierFree)
	assert.False(t, free.Dashboard)
	assert.False(t, free.CustomImages)
	assert.False(t, free.StudyRooms)

	focus := FeaturesOf(TierFocus)
	assert.True(t, focus.Dashboard)
	assert.True(t, focus.CustomImages)
	assert.False(t, focus.StudyRooms)
	assert.False(t, focus.UnlimitedImages)

	student := FeaturesOf(TierStudent)
	assert.True(t, student.StudyRooms)
	assert.True(t, student.UnlimitedImages)
	assert.False(t, student.CustomVideos)

	premium := FeaturesOf(TierPremium)
	assert.True(t, premium.CustomVideos)
	assert.True(t, premium.VIPBadge)
	assert.False(t, premium.CommercialLicense)

	lifetime := FeaturesOf(TierLifetime)
	assert.True(t, lifetime.CommercialLicense)
	assert.True(t, lifetime.AllFutureFeatures)
	assert.Equal(t, 40, lifetime.PrintDiscountPct)
}

func TestHasAccessResolvesEffectiveTier(t *testing.T) {
	future := testNow.Add(time.Hour)
	sub := subWith("student", models.SubscriptionStatusActive, &future)

	assert.True(t, HasAccess(sub, FeatureStudyRooms, testNow))
	assert.False(t, HasAccess(sub, FeatureCustomVideos, testNow))
	assert.False(t, HasAccess(nil, FeatureDashboard, testNow))

	past := testNow.Add(-time.Hour)
	sub.CurrentPeriodEnd = &past
	assert.False(t, HasAccess(sub, FeatureStudyRooms, testNow))
}

func TestRemainingImageCredits(t *testing.T) {
	future := testNow.Add(time.Hour)

	// Free tier has no allowance at all.
	remaining, ok := RemainingImageCredits(nil, testNow)
	assert.Equal(t, 0, remaining)
	assert.False(t, ok)

	focus := subWith("focus", models.SubscriptionStatusActive, &future)
	remaining, ok = RemainingImageCredits(focus, testNow)
	assert.Equal(t, 10, remaining)
	assert.True(t, ok)

	focus.ImageCreditsUsed = 9
	remaining, ok = RemainingImageCredits(focus, testNow)
	assert.Equal(t, 1, remaining)
	assert.True(t, ok)

	focus.ImageCreditsUsed = 10
	remaining, ok = RemainingImageCredits(focus, testNow)
	assert.Equal(t, 0, remaining)
	assert.False(t, ok)

	student := subWith("student", models.SubscriptionStatusActive, &future)
	student.ImageCreditsUsed = 9999
	remaining, ok = RemainingImageCredits(student, testNow)
	assert.Equal(t, -1, remaining)
	assert.True(t, ok)
}

func TestIsPaid(t *testing.T) {
	future := testNow.Add(time.Hour)
	assert.False(t, IsPaid(nil, testNow))
	assert.True(t, IsPaid(subWith("focus", models.SubscriptionStatusActive, &future), testNow))
	assert.False(t, IsPaid(subWith("focus", models.SubscriptionStatusCanceled, &future), testNow))
}

func TestEveryTierHasConfig(t *testing.T) {
	for _, tier := range []Tier{TierFree, TierFocus, TierStudent, TierPremium, TierLifetime} {
		_, ok := tiers[tier]
		assert.True(t, ok, "tier %s missing from table", tier)
	}
}
