package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"music-payment-service/internal/config"
	"music-payment-service/internal/domain/model"
	pg "music-payment-service/internal/infra/db/postgres"
	"music-payment-service/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPlanRepo(pool)
	planUC := usecase.NewPlanUseCase(planRepo)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (days=%d, price=%d VND)\n", p.Name, p.DurationDays, p.Price)
		}
		return
	}

	seed := []struct {
		ID    int64
		Name  string
		Price int64
		Days  int
	}{
		{1, "1 tháng", 49_000, 30},
		{2, "3 tháng", 129_000, 90},
		{3, "1 năm", 399_000, 365},
	}

	for _, s := range seed {
		p, err := model.NewPlan(s.ID, s.Name, s.Price, s.Days)
		if err != nil {
			log.Fatalf("build plan %q: %v", s.Name, err)
		}
		if err := planRepo.Save(ctx, nil, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		fmt.Printf("seeded: %s (id=%d, days=%d, price=%d VND)\n", p.Name, p.ID, p.DurationDays, p.Price)
	}

	fmt.Println("Seeding complete.")
}
