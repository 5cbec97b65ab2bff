//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"music-payment-service/internal/domain"
	"music-payment-service/internal/domain/model"
)

func TestPlanRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewPlanRepo(testPool)

	t.Run("should save and find a plan", func(t *testing.T) {
		cleanup(t)

		plan := &model.Plan{ID: 1, Name: "3 tháng", Price: 129000, DurationDays: 90, CreatedAt: time.Now()}
		if err := repo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("Failed to save plan: %v", err)
		}

		found, err := repo.FindByID(ctx, nil, plan.ID)
		if err != nil {
			t.Fatalf("FindByID failed: %v", err)
		}
		if found.Name != plan.Name || found.Price != plan.Price || found.DurationDays != plan.DurationDays {
			t.Fatalf("found plan does not match saved one: %+v", found)
		}
	})

	t.Run("should upsert on duplicate id", func(t *testing.T) {
		cleanup(t)

		plan := &model.Plan{ID: 2, Name: "1 tháng", Price: 49000, DurationDays: 30, CreatedAt: time.Now()}
		repo.Save(ctx, nil, plan)

		plan.Price = 59000
		if err := repo.Save(ctx, nil, plan); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}

		found, _ := repo.FindByID(ctx, nil, plan.ID)
		if found.Price != 59000 {
			t.Errorf("expected updated price 59000, got %d", found.Price)
		}
	})

	t.Run("should return ErrNotFound for unknown id", func(t *testing.T) {
		cleanup(t)

		_, err := repo.FindByID(ctx, nil, 9999)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("should list all plans ordered by price", func(t *testing.T) {
		cleanup(t)

		repo.Save(ctx, nil, &model.Plan{ID: 3, Name: "1 năm", Price: 399000, DurationDays: 365, CreatedAt: time.Now()})
		repo.Save(ctx, nil, &model.Plan{ID: 4, Name: "1 tháng", Price: 49000, DurationDays: 30, CreatedAt: time.Now()})

		plans, err := repo.ListAll(ctx, nil)
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		if len(plans) != 2 {
			t.Fatalf("expected 2 plans, got %d", len(plans))
		}
		if plans[0].Price > plans[1].Price {
			t.Error("expected plans ordered by ascending price")
		}
	})
}
