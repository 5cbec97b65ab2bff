package repository

import (
	"context"

	"music-payment-service/internal/domain/model"
)

// PlanRepository is the port for subscription plan reference data.
// The payment flow only reads plans; Save exists for seeding and admin tooling.
type PlanRepository interface {
	Save(ctx context.Context, tx Tx, plan *model.Plan) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Plan, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Plan, error)
}
