package feedsource

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mypocket/mypocket/internal/analytics"
	"github.com/mypocket/mypocket/internal/usecase"
)

// BalanceSource implements analytics.BalanceSource on top of the users
// collection: change notifications trigger a profile re-read and the wallet
// scalar is emitted as-is, never recomputed from transactions.
type BalanceSource struct {
	profiles   usecase.ProfileRepository
	subscriber Subscriber
	logger     zerolog.Logger
}

// NewBalanceSource creates a new BalanceSource.
func NewBalanceSource(profiles usecase.ProfileRepository, subscriber Subscriber, logger zerolog.Logger) *BalanceSource {
	return &BalanceSource{
		profiles:   profiles,
		subscriber: subscriber,
		logger:     logger.With().Str("collection", usecase.CollectionUsers).Logger(),
	}
}

// Watch implements analytics.BalanceSource.
func (s *BalanceSource) Watch(ctx context.Context, userID string) (<-chan analytics.BalanceEvent, error) {
	events := make(chan analytics.BalanceEvent)

	go s.run(ctx, userID, events)

	return events, nil
}

func (s *BalanceSource) run(ctx context.Context, userID string, events chan<- analytics.BalanceEvent) {
	defer close(events)

	s.refresh(ctx, userID, events)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0

	for {
		sub := s.subscriber.Subscribe(ctx, usecase.CollectionUsers, userID)
		err := s.consume(ctx, userID, sub, events)
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}

		s.logger.Warn().Err(err).Str("user_id", userID).Msg("balance subscription dropped, retrying")
		s.send(ctx, events, analytics.BalanceEvent{Err: err})

		select {
		case <-ctx.Done():
			return
		case <-time.After(b.NextBackOff()):
		}
	}
}

func (s *BalanceSource) consume(ctx context.Context, userID string, sub pubsubChannel, events chan<- analytics.BalanceEvent) error {
	ch := sub.Channel()

	s.refresh(ctx, userID, events)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ch:
			if !ok {
				return errSubscriptionClosed
			}
			s.refresh(ctx, userID, events)
		}
	}
}

func (s *BalanceSource) refresh(ctx context.Context, userID string, events chan<- analytics.BalanceEvent) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("balance query failed")
		s.send(ctx, events, analytics.BalanceEvent{Err: err})
		return
	}

	s.send(ctx, events, analytics.BalanceEvent{Balance: profile.WalletBalance})
}

func (s *BalanceSource) send(ctx context.Context, events chan<- analytics.BalanceEvent, ev analytics.BalanceEvent) {
	select {
	case <-ctx.Done():
	case events <- ev:
	}
}
