package repository

import (
	"context"

	"music-payment-service/internal/domain/model"
)

// SubscriptionRepository is the port for provisioned entitlements.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error
	FindLatestByUser(ctx context.Context, tx Tx, userID int64) (*model.Subscription, error)

	// CountByPlan returns the number of subscriptions per plan id, used by the
	// stats endpoint of the main application.
	CountByPlan(ctx context.Context, tx Tx) (map[int64]int, error)
}
