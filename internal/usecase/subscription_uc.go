package usecase

import (
	"context"

	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/domain/ports/repository"
)

var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	// Latest returns the user's most recent subscription.
	Latest(ctx context.Context, userID int64) (*model.Subscription, error)
	// CountByPlan aggregates active subscription counts for stats.
	CountByPlan(ctx context.Context) (map[int64]int, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository) *subscriptionUC {
	return &subscriptionUC{subs: subs}
}

func (u *subscriptionUC) Latest(ctx context.Context, userID int64) (*model.Subscription, error) {
	return u.subs.FindLatestByUser(ctx, nil, userID)
}

func (u *subscriptionUC) CountByPlan(ctx context.Context) (map[int64]int, error) {
	return u.subs.CountByPlan(ctx, nil)
}
