package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mypocket/mypocket/internal/adapter/http/handler"
	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/infrastructure/auth"
	"github.com/mypocket/mypocket/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransactionHandler *handler.TransactionHandler
	FeedHandler        *handler.FeedHandler
	BalanceHandler     *handler.BalanceHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	ProfileHandler     *handler.ProfileHandler
	ExportHandler      *handler.ExportHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	JWTManager         *auth.JWTManager // nil disables token auth
	RateLimiter        *middleware.RateLimiter
	Logging            *middleware.LoggingMiddleware
	Metrics            *middleware.MetricsMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	r.Use(middleware.Recovery)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and observability endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		} else {
			r.Use(middleware.DevAuth)
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Transactions
		r.Route("/transactions", func(r chi.Router) {
			r.Post("/expenses", cfg.TransactionHandler.AddExpense)
			r.Post("/topups", cfg.TransactionHandler.AddTopup)
		})

		// Feed
		r.Route("/feed", func(r chi.Router) {
			r.Get("/", cfg.TransactionHandler.Feed)
			r.Get("/stream", cfg.FeedHandler.Stream)
		})

		// Balance
		r.Get("/balance/stream", cfg.BalanceHandler.Stream)

		// Analytics
		r.Get("/summary", cfg.AnalyticsHandler.Summary)

		// Profile
		r.Route("/profile", func(r chi.Router) {
			r.Get("/", cfg.ProfileHandler.Me)
			r.Put("/settings", cfg.ProfileHandler.UpdateSettings)
			r.Post("/reset", cfg.ProfileHandler.Reset)
		})

		// Export
		r.Get("/export", cfg.ExportHandler.Export)
	})

	return r
}
