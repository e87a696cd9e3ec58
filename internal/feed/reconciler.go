package feed

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mypocket/mypocket/internal/domain"
)

// Reconciler maintains, per subscription, a live merged view of a user's
// expense and top-up partitions. Each partition is replaced in full when its
// source delivers a snapshot; the merged feed is recomputed from the two
// current partitions on every update.
type Reconciler struct {
	expenses Source
	topups   Source
	logger   zerolog.Logger
}

// NewReconciler creates a new Reconciler over the two partition sources.
func NewReconciler(expenses, topups Source, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		expenses: expenses,
		topups:   topups,
		logger:   logger,
	}
}

// Subscribe starts a live feed for userID. The subscription owns both
// underlying partition watches; closing it tears everything down together.
func (r *Reconciler) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	runCtx, cancel := context.WithCancel(ctx)

	expCh, err := r.expenses.Watch(runCtx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	topCh, err := r.topups.Watch(runCtx, userID)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &Subscription{
		snapshots: make(chan Snapshot, 1),
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	go r.run(runCtx, userID, expCh, topCh, sub)

	return sub, nil
}

// run is the single logical thread of a subscription. All partition state is
// mutated here and nowhere else, so no locking is needed; each event is
// handled to completion before the next is dispatched.
func (r *Reconciler) run(ctx context.Context, userID string, expCh, topCh <-chan PartitionEvent, sub *Subscription) {
	defer close(sub.done)
	defer close(sub.snapshots)

	var (
		expenses, topups   []domain.Transaction
		expStale, topStale bool
	)

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-expCh:
			if !ok {
				return
			}
			applyEvent(ev, &expenses, &expStale)
			if ev.Err != nil {
				r.logger.Warn().Err(ev.Err).Str("user_id", userID).Str("partition", "expenses").Msg("partition subscription error, keeping last-known-good data")
			}

		case ev, ok := <-topCh:
			if !ok {
				return
			}
			applyEvent(ev, &topups, &topStale)
			if ev.Err != nil {
				r.logger.Warn().Err(ev.Err).Str("user_id", userID).Str("partition", "topups").Msg("partition subscription error, keeping last-known-good data")
			}
		}

		sub.publish(Snapshot{
			Transactions:  Merge(expenses, topups),
			ExpensesStale: expStale,
			TopupsStale:   topStale,
		})
	}
}

// applyEvent replaces the partition on a snapshot and marks it stale on an
// error, retaining the previous data in that case.
func applyEvent(ev PartitionEvent, partition *[]domain.Transaction, stale *bool) {
	if ev.Err != nil {
		*stale = true
		return
	}

	*partition = ev.Transactions
	*stale = false
}

// Subscription is one live feed. Snapshots are delivered through a one-slot
// mailbox with latest-wins semantics: a slow consumer never blocks
// reconciliation and only ever observes complete snapshots.
type Subscription struct {
	snapshots chan Snapshot
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Snapshots returns the snapshot stream. The channel is closed when the
// subscription ends.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// Close cancels the subscription and waits for the reconcile loop to exit.
// When it returns, both partition watches are released and no further
// snapshot will be delivered, even if the store pushes a late notification.
// Close is idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

// publish places snap in the mailbox, displacing an unconsumed older
// snapshot if one is pending.
func (s *Subscription) publish(snap Snapshot) {
	for {
		select {
		case s.snapshots <- snap:
			return
		default:
		}

		select {
		case <-s.snapshots:
		default:
		}
	}
}
