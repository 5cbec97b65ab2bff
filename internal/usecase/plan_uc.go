package usecase

import (
	"context"

	"music-payment-service/internal/domain/model"
	"music-payment-service/internal/domain/ports/repository"
)

var _ PlanUseCase = (*planUC)(nil)

type PlanUseCase interface {
	Get(ctx context.Context, id int64) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
}

func NewPlanUseCase(plans repository.PlanRepository) *planUC {
	return &planUC{plans: plans}
}

func (u *planUC) Get(ctx context.Context, id int64) (*model.Plan, error) {
	return u.plans.FindByID(ctx, nil, id)
}

func (u *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	return u.plans.ListAll(ctx, nil)
}
