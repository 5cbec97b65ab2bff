package model

import (
	"time"

	"music-payment-service/internal/domain"
)

// Plan represents a purchasable subscription plan with a fixed duration
// and price in whole VND. Plans are reference data: the payment flow only
// ever reads them.
type Plan struct {
	ID           int64
	Name         string
	Price        int64 // whole VND, no decimals
	DurationDays int
	CreatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == 0 }

// NewPlan validates and constructs a plan.
func NewPlan(id int64, name string, price int64, durationDays int) (*Plan, error) {
	if name == "" || price <= 0 || durationDays <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		Price:        price,
		DurationDays: durationDays,
		CreatedAt:    time.Now(),
	}, nil
}
