package feed

import (
	"context"

	"github.com/mypocket/mypocket/internal/domain"
)

// PartitionEvent is one delivery from a partition subscription: either a
// complete replacement snapshot of the partition's current contents, or a
// subscription error. Sources deliver full snapshots, never deltas; the
// reconciler does no incremental patching.
type PartitionEvent struct {
	Transactions []domain.Transaction
	Err          error
}

// Source is one collection's subscription stream for a user. Watch delivers
// an initial snapshot followed by a snapshot per change, in store order for
// that partition. The returned channel is closed when ctx is cancelled.
// Transient failures are reported as error events while the source keeps
// retrying; the reconciler retains last-known-good data in the meantime.
type Source interface {
	Watch(ctx context.Context, userID string) (<-chan PartitionEvent, error)
}

// Snapshot is the reconciled read model delivered to subscribers: the union
// of both partitions, each transaction exactly once, in feed order, plus
// per-partition staleness markers set while a partition's subscription is
// erroring and its data is last-known-good rather than live.
type Snapshot struct {
	Transactions  []domain.Transaction
	ExpensesStale bool
	TopupsStale   bool
}
