package analytics

import (
	"context"

	"github.com/shopspring/decimal"
)

// BalanceEvent is one delivery from a profile-balance subscription: the
// current denormalized wallet scalar, or a subscription error.
type BalanceEvent struct {
	Balance decimal.Decimal
	Err     error
}

// BalanceSource is the profile document's subscription stream for a user.
type BalanceSource interface {
	Watch(ctx context.Context, userID string) (<-chan BalanceEvent, error)
}

// BalanceSnapshot is the live balance read model. Stale is set while the
// underlying subscription is erroring; Balance then holds the
// last-known-good value rather than a live one.
type BalanceSnapshot struct {
	Balance decimal.Decimal
	Stale   bool
}

// BalanceWatcher turns a raw balance subscription into the stale-aware read
// model: errors mark the value stale instead of clearing it.
type BalanceWatcher struct {
	source BalanceSource
}

// NewBalanceWatcher creates a new BalanceWatcher.
func NewBalanceWatcher(source BalanceSource) *BalanceWatcher {
	return &BalanceWatcher{source: source}
}

// Watch subscribes to the live balance for userID. The returned channel is
// closed when ctx is cancelled.
func (w *BalanceWatcher) Watch(ctx context.Context, userID string) (<-chan BalanceSnapshot, error) {
	events, err := w.source.Watch(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(chan BalanceSnapshot, 1)

	go func() {
		defer close(out)

		last := decimal.Zero
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}

				snap := BalanceSnapshot{Balance: last, Stale: true}
				if ev.Err == nil {
					last = ev.Balance
					snap = BalanceSnapshot{Balance: ev.Balance}
				}

				publishBalance(out, snap)
			}
		}
	}()

	return out, nil
}

// publishBalance places snap in the mailbox, displacing an unconsumed older
// snapshot if one is pending. It never blocks on a stalled consumer.
func publishBalance(out chan BalanceSnapshot, snap BalanceSnapshot) {
	for {
		select {
		case out <- snap:
			return
		default:
		}

		select {
		case <-out:
		default:
		}
	}
}
