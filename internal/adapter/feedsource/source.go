// Package feedsource bridges the stores to the live feed: it turns a Redis
// change channel plus a Postgres collection into a stream of full partition
// snapshots.
package feedsource

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/feed"
	"github.com/mypocket/mypocket/internal/infrastructure/metrics"
)

var errSubscriptionClosed = errors.New("change subscription closed")

// Subscriber opens a pub/sub subscription for one (collection, user) channel.
// Satisfied by the Redis notifier.
type Subscriber interface {
	Subscribe(ctx context.Context, collection, userID string) *redis.PubSub
}

type pubsubChannel interface {
	Channel(opts ...redis.ChannelOption) <-chan *redis.Message
}

// ListFunc loads the full current partition for a user.
type ListFunc func(ctx context.Context, userID string) ([]domain.Transaction, error)

// TransactionSource implements feed.Source for one collection. Every
// notification triggers a complete re-query; the feed never sees deltas.
// While the subscription or the query is failing, error events flow to the
// reconciler and the source retries with exponential backoff.
type TransactionSource struct {
	collection string
	list       ListFunc
	subscriber Subscriber
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewTransactionSource creates a source for one collection.
func NewTransactionSource(collection string, list ListFunc, subscriber Subscriber, logger zerolog.Logger, m *metrics.Metrics) *TransactionSource {
	return &TransactionSource{
		collection: collection,
		list:       list,
		subscriber: subscriber,
		logger:     logger.With().Str("collection", collection).Logger(),
		metrics:    m,
	}
}

// Watch implements feed.Source.
func (s *TransactionSource) Watch(ctx context.Context, userID string) (<-chan feed.PartitionEvent, error) {
	events := make(chan feed.PartitionEvent)

	go s.run(ctx, userID, events)

	return events, nil
}

func (s *TransactionSource) run(ctx context.Context, userID string, events chan<- feed.PartitionEvent) {
	defer close(events)

	// Initial snapshot before any notification arrives.
	s.refresh(ctx, userID, events)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // retry for as long as the subscription lives

	for {
		sub := s.subscriber.Subscribe(ctx, s.collection, userID)
		err := s.consume(ctx, userID, sub, events)
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}

		s.logger.Warn().Err(err).Str("user_id", userID).Msg("change subscription dropped, retrying")
		if s.metrics != nil {
			s.metrics.PartitionErrors.WithLabelValues(s.collection).Inc()
		}
		s.send(ctx, events, feed.PartitionEvent{Err: err})

		select {
		case <-ctx.Done():
			return
		case <-time.After(b.NextBackOff()):
		}
	}
}

// consume drains one pub/sub subscription until it fails or ctx ends.
func (s *TransactionSource) consume(ctx context.Context, userID string, sub pubsubChannel, events chan<- feed.PartitionEvent) error {
	ch := sub.Channel()

	// The subscription is live again; deliver a fresh snapshot so changes
	// published while it was down are not missed.
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

// refresh re-queries the partition and emits it as a replacement snapshot.
// A query failure becomes an error event; the next notification or reconnect
// triggers another attempt.
func (s *TransactionSource) refresh(ctx context.Context, userID string, events chan<- feed.PartitionEvent) {
	records, err := s.list(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("partition query failed")
		if s.metrics != nil {
			s.metrics.PartitionErrors.WithLabelValues(s.collection).Inc()
		}
		s.send(ctx, events, feed.PartitionEvent{Err: err})
		return
	}

	if s.metrics != nil {
		s.metrics.FeedRefreshes.WithLabelValues(s.collection).Inc()
	}
	s.send(ctx, events, feed.PartitionEvent{Transactions: records})
}

func (s *TransactionSource) send(ctx context.Context, events chan<- feed.PartitionEvent, ev feed.PartitionEvent) {
	select {
	case <-ctx.Done():
	case events <- ev:
	}
}
