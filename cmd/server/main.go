package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/mypocket/mypocket/internal/adapter/feedsource"
	httpAdapter "github.com/mypocket/mypocket/internal/adapter/http"
	"github.com/mypocket/mypocket/internal/adapter/http/handler"
	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	postgresRepo "github.com/mypocket/mypocket/internal/adapter/repository/postgres"
	redisRepo "github.com/mypocket/mypocket/internal/adapter/repository/redis"
	"github.com/mypocket/mypocket/internal/analytics"
	"github.com/mypocket/mypocket/internal/feed"
	"github.com/mypocket/mypocket/internal/infrastructure/auth"
	"github.com/mypocket/mypocket/internal/infrastructure/config"
	"github.com/mypocket/mypocket/internal/infrastructure/logger"
	"github.com/mypocket/mypocket/internal/infrastructure/logging"
	"github.com/mypocket/mypocket/internal/infrastructure/metrics"
	"github.com/mypocket/mypocket/internal/infrastructure/postgres"
	"github.com/mypocket/mypocket/internal/infrastructure/redis"
	"github.com/mypocket/mypocket/internal/usecase"
	"github.com/mypocket/mypocket/internal/worker"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrationsPath != "" {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	transactionRepo := postgresRepo.NewTransactionRepository(pool)
	profileRepo := postgresRepo.NewProfileRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	notifier := redisRepo.NewNotifier(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	transactionUC := usecase.NewTransactionUseCase(txManager, transactionRepo, profileRepo, idGen, notifier, log)
	profileUC := usecase.NewProfileUseCase(txManager, profileRepo, transactionRepo, notifier, log)
	exportUC := usecase.NewExportUseCase(transactionUC)

	// Live feed: one source per collection, reconciled per subscription
	expenseSource := feedsource.NewTransactionSource(usecase.CollectionExpenses, transactionRepo.ListExpenses, notifier, log, m)
	topupSource := feedsource.NewTransactionSource(usecase.CollectionTopups, transactionRepo.ListTopups, notifier, log, m)
	reconciler := feed.NewReconciler(expenseSource, topupSource, log)
	balanceWatcher := analytics.NewBalanceWatcher(feedsource.NewBalanceSource(profileRepo, notifier, log))

	// Handlers
	transactionHandler := handler.NewTransactionHandler(transactionUC, m)
	feedHandler := handler.NewFeedHandler(reconciler, log, m)
	balanceHandler := handler.NewBalanceHandler(balanceWatcher, log)
	analyticsHandler := handler.NewAnalyticsHandler(transactionUC)
	profileHandler := handler.NewProfileHandler(profileUC, m)
	exportHandler := handler.NewExportHandler(exportUC, m)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled && cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("token authentication enabled")
	} else {
		log.Warn().Msg("token authentication disabled, using header identity")
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		TransactionHandler: transactionHandler,
		FeedHandler:        feedHandler,
		BalanceHandler:     balanceHandler,
		AnalyticsHandler:   analyticsHandler,
		ProfileHandler:     profileHandler,
		ExportHandler:      exportHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		JWTManager:         jwtManager,
		RateLimiter:        middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		Logging:            middleware.NewLoggingMiddleware(log),
		Metrics:            middleware.NewMetricsMiddleware(m),
	})

	// WriteTimeout stays zero: the feed and balance SSE streams hold their
	// response open for the life of the subscription.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: cfg.HTTPReadTimeout,
		IdleTimeout: cfg.HTTPIdleTimeout,
	}

	location, err := cfg.AutoAddLocation()
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.AutoAddTimezone).Msg("invalid auto-add timezone")
	}

	autoAdd := worker.New(worker.Config{
		Profiles:    profileRepo,
		Topups:      transactionUC,
		Idempotency: idempotencyStore,
		Logger:      logging.New(cfg.LogLevel, cfg.LogFormat),
		Interval:    cfg.AutoAddInterval,
		Location:    location,
	})

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := autoAdd.Start(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}
