package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
)

// Subscription mirrors the record written back by the checkout provider.
// The service reads it and increments the local usage counters; everything
// else is owned externally.
type Subscription struct {
	UserID               string
	Tier                 string
	Status               SubscriptionStatus
	ProviderCustomerID   *string
	ProviderSubscription *string
	CurrentPeriodEnd     *time.Time
	ImageCreditsUsed     int
	VideoCreditsUsed     int
	CreditsResetAt       *time.Time
	UpdatedAt            time.Time
}
