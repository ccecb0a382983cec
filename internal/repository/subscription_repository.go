package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stilltime/api/internal/models"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

func (r *SubscriptionRepository) Get(ctx context.Context, userID string) (models.Subscription, error) {
	const query = `
		SELECT user_id, tier, status, provider_customer_id, provider_subscription_id,
		       current_period_end, image_credits_used, video_credits_used, credits_reset_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`

	var sub models.Subscription
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&sub.Tier,
		&sub.Status,
		&sub.ProviderCustomerID,
		&sub.ProviderSubscription,
		&sub.CurrentPeriodEnd,
		&sub.ImageCreditsUsed,
		&sub.VideoCreditsUsed,
		&sub.CreditsResetAt,
		&sub.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrSubscriptionNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// Upsert merges the record the checkout provider wrote back. Local usage
// counters are preserved across provider updates.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub models.Subscription) error {
	const query = `
		INSERT INTO subscriptions (
			user_id, tier, status, provider_customer_id, provider_subscription_id,
			current_period_end, image_credits_used, video_credits_used, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, 0, 0, NOW()
		)
		ON CONFLICT (user_id)
		DO UPDATE SET
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			provider_customer_id = EXCLUDED.provider_customer_id,
			provider_subscription_id = EXCLUDED.provider_subscription_id,
			current_period_end = EXCLUDED.current_period_end,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		sub.UserID,
		sub.Tier,
		sub.Status,
		sub.ProviderCustomerID,
		sub.ProviderSubscription,
		sub.CurrentPeriodEnd,
	)
	return err
}

// IncrementImageCredits spends one metered image credit. Increment
// semantics keep concurrent generations from losing a count.
func (r *SubscriptionRepository) IncrementImageCredits(ctx context.Context, userID string) error {
	const query = `
		UPDATE subscriptions
		SET image_credits_used = image_credits_used + 1, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *SubscriptionRepository) IncrementVideoCredits(ctx context.Context, userID string) error {
	const query = `
		UPDATE subscriptions
		SET video_credits_used = video_credits_used + 1, updated_at = NOW()
		WHERE user_id = $1
	`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// ResetMonthlyCredits zeroes every usage counter; the scheduler runs it at
// the start of each month.
func (r *SubscriptionRepository) ResetMonthlyCredits(ctx context.Context) (int64, error) {
	const query = `
		UPDATE subscriptions
		SET image_credits_used = 0, video_credits_used = 0, credits_reset_at = NOW(), updated_at = NOW()
	`
	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
