// Package subscription maps subscription records to feature access and
// metered credit allowances. Tiers are a closed enum and each tier carries a
// complete Features struct, so adding a tier cannot silently omit a flag.
package subscription

import (
	"time"

	"stilltime/api/internal/models"
)

type Tier string

const (
	TierFree     Tier = "free"
	TierFocus    Tier = "focus"
	TierStudent  Tier = "student"
	TierPremium  Tier = "premium"
	TierLifetime Tier = "lifetime"
)

// Features is the per-tier access matrix. Every field must be set for every
// tier in the table below.
type Features struct {
	Dashboard          bool
	ExportData         bool
	CustomImages       bool
	StudyRooms         bool
	UnlimitedImages    bool
	CustomVideos       bool
	PriorityGeneration bool
	HighResExports     bool
	VIPBadge           bool
	CommercialLicense  bool
	AllFutureFeatures  bool
	PrintDiscountPct   int
}

// Credits are the monthly metered allowances. Unlimited bypasses the
// counter check entirely.
type Credits struct {
	ImageMonthly     int
	ImageUnlimited   bool
	VideoMonthly     int
	VideoRolloverMax int
}

type tierConfig struct {
	Features Features
	Credits  Credits
}

var tiers = map[Tier]tierConfig{
	TierFree: {
		Features: Features{},
		Credits:  Credits{},
	},
	TierFocus: {
		Features: Features{
			Dashboard:    true,
			ExportData:   true,
			CustomImages: true,
		},
		Credits: Credits{ImageMonthly: 10},
	},
	TierStudent: {
		Features: Features{
			Dashboard:        true,
			ExportData:       true,
			CustomImages:     true,
			StudyRooms:       true,
			UnlimitedImages:  true,
			PrintDiscountPct: 15,
		},
		Credits: Credits{ImageUnlimited: true},
	},
	TierPremium: {
		Features: Features{
			Dashboard:          true,
			ExportData:         true,
			CustomImages:       true,
			StudyRooms:         true,
			UnlimitedImages:    true,
			CustomVideos:       true,
			PriorityGeneration: true,
			HighResExports:     true,
			VIPBadge:           true,
			PrintDiscountPct:   30,
		},
		Credits: Credits{ImageUnlimited: true, VideoMonthly: 25, VideoRolloverMax: 50},
	},
	TierLifetime: {
		Features: Features{
			Dashboard:          true,
			ExportData:         true,
			CustomImages:       true,
			StudyRooms:         true,
			UnlimitedImages:    true,
			CustomVideos:       true,
			PriorityGeneration: true,
			HighResExports:     true,
			VIPBadge:           true,
			CommercialLicense:  true,
			AllFutureFeatures:  true,
			PrintDiscountPct:   40,
		},
		Credits: Credits{ImageUnlimited: true, VideoMonthly: 50, VideoRolloverMax: 100},
	},
}

// ParseTier normalizes a stored tier string; anything unknown degrades to
// free rather than erroring, matching the fail-open posture for reads.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierFocus, TierStudent, TierPremium, TierLifetime:
		return Tier(s)
	default:
		return TierFree
	}
}

// TierOf resolves the effective tier of a possibly absent subscription.
// A missing, inactive, or lapsed subscription is the free tier.
func TierOf(sub *models.Subscription, now time.Time) Tier {
	if sub == nil {
		return TierFree
	}
	if sub.Status != models.SubscriptionStatusActive {
		return TierFree
	}
	if sub.CurrentPeriodEnd != nil && sub.CurrentPeriodEnd.Before(now) {
		return TierFree
	}
	return ParseTier(sub.Tier)
}

// IsPaid reports whether the subscription currently grants a paid tier.
func IsPaid(sub *models.Subscription, now time.Time) bool {
	return TierOf(sub, now) != TierFree
}

func FeaturesOf(tier Tier) Features {
	return tiers[tier].Features
}

func CreditsOf(tier Tier) Credits {
	return tiers[tier].Credits
}

// RemainingImageCredits reports how many metered image generations are left
// this cycle. ok is false when the allowance is exhausted; unlimited tiers
// always report ok with remaining -1.
func RemainingImageCredits(sub *models.Subscription, now time.Time) (remaining int, ok bool) {
	tier := TierOf(sub, now)
	credits := CreditsOf(tier)

	if credits.ImageUnlimited {
		return -1, true
	}
	used := 0
	if sub != nil {
		used = sub.ImageCreditsUsed
	}
	remaining = credits.ImageMonthly - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, remaining > 0
}

// DisplayName is the marketing name for a tier.
func DisplayName(tier Tier) string {
	switch tier {
	case TierFocus:
		return "Focus+"
	case TierStudent:
		return "Student"
	case TierPremium:
		return "Premium"
	case TierLifetime:
		return "Lifetime"
	default:
		return "Free"
	}
}
