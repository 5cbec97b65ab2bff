package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"music-payment-service/internal/config"
	"music-payment-service/internal/infra/redis"
	"music-payment-service/internal/usecase"
)

// Server wires the payment API routes to the use cases.
type Server struct {
	payUC   usecase.PaymentUseCase
	planUC  usecase.PlanUseCase
	subUC   usecase.SubscriptionUseCase
	gateway usecase.PaymentGateway

	auth    *AuthManager       // nil when auth is disabled
	limiter *redis.RateLimiter // nil when no redis is configured
	rate    config.RateLimitConfig

	log *zerolog.Logger
}

func NewServer(
	payUC usecase.PaymentUseCase,
	planUC usecase.PlanUseCase,
	subUC usecase.SubscriptionUseCase,
	gateway usecase.PaymentGateway,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	rate config.RateLimitConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		payUC:   payUC,
		planUC:  planUC,
		subUC:   subUC,
		gateway: gateway,
		auth:    auth,
		limiter: limiter,
		rate:    rate,
		log:     logger,
	}
}

// Router builds the chi mux with all routes and shared middleware.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), RequestLog(s.log), Timeout(15*time.Second))

	r.Post("/api/payments", s.handleCreatePayment)

	// Gateway-facing endpoints are never authenticated; the signature is the
	// authentication.
	r.Get("/api/payments/vnpay/ipn", s.handleIPN)
	r.Get("/api/payments/vnpay/return", s.handleReturn)

	r.Get("/api/plans", s.handleListPlans)
	r.Get("/api/users/{userID}/subscription", s.handleLatestSubscription)
	r.Get("/api/stats", s.handleStats)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
