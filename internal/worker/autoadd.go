// Package worker hosts the background jobs that run beside the HTTP server.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/usecase"
)

// TopupCreator is the command surface the worker needs: it credits wallets
// through the same atomic path as user-initiated top-ups.
type TopupCreator interface {
	AddTopup(ctx context.Context, input usecase.AddTopupInput) (*domain.Transaction, error)
}

// How long an auto-add idempotency key lives. It only has to outlast the
// month it guards.
const autoAddKeyTTL = 40 * 24 * time.Hour

// AutoAdd credits each auto-add-enabled profile with its monthly
// pocket-money target on the 1st of the month. A per-(user, month)
// idempotency key makes restarts and overlapping replicas safe: each user
// is credited at most once per month.
type AutoAdd struct {
	profiles    usecase.ProfileRepository
	topups      TopupCreator
	idempotency usecase.IdempotencyStore
	logger      *slog.Logger
	interval    time.Duration
	location    *time.Location
	now         func() time.Time
}

// Config for AutoAdd.
type Config struct {
	Profiles    usecase.ProfileRepository
	Topups      TopupCreator
	Idempotency usecase.IdempotencyStore
	Logger      *slog.Logger
	Interval    time.Duration  // Polling interval
	Location    *time.Location // Wall clock used to decide "the 1st"
}

// New creates a new AutoAdd worker.
func New(cfg Config) *AutoAdd {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &AutoAdd{
		profiles:    cfg.Profiles,
		topups:      cfg.Topups,
		idempotency: cfg.Idempotency,
		logger:      cfg.Logger,
		interval:    cfg.Interval,
		location:    cfg.Location,
		now:         time.Now,
	}
}

// Start begins the worker. It runs continuously until the context is
// cancelled.
func (w *AutoAdd) Start(ctx context.Context) error {
	w.logger.Info("auto-add worker started",
		slog.Duration("interval", w.interval),
		slog.String("location", w.location.String()))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// Check immediately on start so a restart on the 1st does not wait a
	// full interval.
	if err := w.runOnce(ctx); err != nil {
		w.logger.Error("auto-add pass failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("auto-add worker shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				w.logger.Error("auto-add pass failed", slog.String("error", err.Error()))
			}
		}
	}
}

func (w *AutoAdd) runOnce(ctx context.Context) error {
	now := w.now().In(w.location)
	if now.Day() != 1 {
		return nil
	}

	profiles, err := w.profiles.ListAutoAddEnabled(ctx)
	if err != nil {
		return err
	}

	for _, profile := range profiles {
		if profile.MonthlyPocketMoney.LessThanOrEqual(decimal.Zero) {
			continue
		}

		if err := w.creditProfile(ctx, profile, now); err != nil {
			w.logger.Error("auto-add credit failed",
				slog.String("user_id", profile.ID),
				slog.String("error", err.Error()))
			// Keep processing the remaining profiles.
		}
	}

	return nil
}

func (w *AutoAdd) creditProfile(ctx context.Context, profile *domain.Profile, now time.Time) error {
	key := fmt.Sprintf("autoadd:%s:%04d-%02d", profile.ID, now.Year(), int(now.Month()))

	exists, _, err := w.idempotency.CheckAndSet(ctx, key, nil, autoAddKeyTTL)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = w.topups.AddTopup(ctx, usecase.AddTopupInput{
		UserID: profile.ID,
		Title:  "Monthly pocket money",
		Source: domain.SourceMonthly,
		Amount: profile.MonthlyPocketMoney,
	})
	if err != nil {
		// The key stays locked until it expires; the failure is surfaced in
		// logs rather than risking a double credit on retry.
		return err
	}

	if err := w.idempotency.Update(ctx, key, []byte("credited"), autoAddKeyTTL); err != nil {
		w.logger.Warn("auto-add key update failed",
			slog.String("user_id", profile.ID),
			slog.String("error", err.Error()))
	}

	w.logger.Info("monthly pocket money credited",
		slog.String("user_id", profile.ID),
		slog.String("amount", profile.MonthlyPocketMoney.String()))

	return nil
}
