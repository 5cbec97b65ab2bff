package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"music-payment-service/internal/config"
	pg "music-payment-service/internal/infra/db/postgres"
	"music-payment-service/internal/infra/logging"
	"music-payment-service/internal/infra/metrics"
	red "music-payment-service/internal/infra/redis"
	"music-payment-service/internal/infra/vnpay"
	"music-payment-service/internal/infra/web"
	"music-payment-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	go func() {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				pg.ReportPoolStats(pool)
			}
		}
	}()

	// ---- Redis (optional, powers the rate limiter) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; payment rate limiting disabled")
	}

	// ---- Repositories ----
	planRepo := pg.NewPlanRepo(pool)
	txnRepo := pg.NewTransactionRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Gateway ----
	gateway, err := vnpay.NewGateway(cfg.VNPay.TmnCode, cfg.VNPay.HashSecret, cfg.VNPay.PayURL, cfg.VNPay.ReturnURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("vnpay gateway")
	}

	// ---- Use cases ----
	payUC := usecase.NewPaymentUseCase(txnRepo, subRepo, planRepo, txManager, gateway, logger)
	planUC := usecase.NewPlanUseCase(planRepo)
	subUC := usecase.NewSubscriptionUseCase(subRepo)

	// ---- HTTP server ----
	var auth *web.AuthManager
	if cfg.Auth.Enabled {
		auth = web.NewAuthManager(cfg.Auth.JWTSecret)
	}
	srv := web.NewServer(payUC, planUC, subUC, gateway, auth, limiter, cfg.RateLimit, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}
