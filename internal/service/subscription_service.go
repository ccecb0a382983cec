package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"stilltime/api/internal/clock"
	"stilltime/api/internal/models"
	"stilltime/api/internal/repository"
	"stilltime/api/internal/subscription"
)

type SubscriptionService struct {
	subs *repository.SubscriptionRepository
	clk  clock.Clock
	log  zerolog.Logger
}

func NewSubscriptionService(
	subs *repository.SubscriptionRepository,
	clk clock.Clock,
	log zerolog.Logger,
) *SubscriptionService {
	return &SubscriptionService{subs: subs, clk: clk, log: log}
}

type SubscriptionView struct {
	Tier         subscription.Tier
	Features     subscription.Features
	Subscription *models.Subscription
}

// Current resolves the user's effective tier. A missing, inactive, or
// lapsed subscription resolves to the free tier rather than an error.
func (s *SubscriptionService) Current(ctx context.Context, userID string) (SubscriptionView, error) {
	now := s.clk.Now()

	var sub *models.Subscription
	record, err := s.subs.Get(ctx, userID)
	if err == nil {
		sub = &record
	} else if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return SubscriptionView{}, err
	}

	tier := subscription.TierOf(sub, now)
	return SubscriptionView{
		Tier:         tier,
		Features:     subscription.FeaturesOf(tier),
		Subscription: sub,
	}, nil
}

func (s *SubscriptionService) Lookup(ctx context.Context, userID string) (*models.Subscription, error) {
	record, err := s.subs.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

type SetPlanInput struct {
	UserID               string
	Tier                 string
	Status               models.SubscriptionStatus
	ProviderCustomerID   *string
	ProviderSubscription *string
	CurrentPeriodEnd     *time.Time
}

// SetPlan writes the subscription record pushed by the checkout provider.
// Usage counters on an existing row are preserved by the upsert.
func (s *SubscriptionService) SetPlan(ctx context.Context, input SetPlanInput) error {
	tier := subscription.ParseTier(input.Tier)
	return s.subs.Upsert(ctx, models.Subscription{
		UserID:               input.UserID,
		Tier:                 string(tier),
		Status:               input.Status,
		ProviderCustomerID:   input.ProviderCustomerID,
		ProviderSubscription: input.ProviderSubscription,
		CurrentPeriodEnd:     input.CurrentPeriodEnd,
	})
}

// ChargeImageCredit counts one metered image generation against the user.
func (s *SubscriptionService) ChargeImageCredit(ctx context.Context, userID string) error {
	return s.subs.IncrementImageCredits(ctx, userID)
}

// ResetMonthlyCredits zeroes the metered usage counters across all rows.
// The scheduler calls this on the first of each month.
func (s *SubscriptionService) ResetMonthlyCredits(ctx context.Context) (int64, error) {
	return s.subs.ResetMonthlyCredits(ctx)
}
