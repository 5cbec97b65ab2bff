package model

import (
	"time"

	"music-payment-service/internal/domain"
)

const SubscriptionPaymentStatusPaid = "paid"

// Subscription is the entitlement created when a transaction settles as
// completed. DurationDays is copied from the plan at settlement time.
type Subscription struct {
	ID            string // UUID
	UserID        int64
	PlanID        int64
	PaymentStatus string
	DurationDays  int
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// NewSubscription creates an entitlement starting now and expiring after the
// plan's duration.
func NewSubscription(id string, userID int64, plan *Plan) (*Subscription, error) {
	if id == "" || userID <= 0 || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Subscription{
		ID:            id,
		UserID:        userID,
		PlanID:        plan.ID,
		PaymentStatus: SubscriptionPaymentStatusPaid,
		DurationDays:  plan.DurationDays,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour),
	}, nil
}
