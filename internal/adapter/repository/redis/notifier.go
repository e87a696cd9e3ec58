package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Notifier fans collection change notifications out over Redis pub/sub.
// Each (collection, user) pair has its own channel; the payload carries no
// data, subscribers re-query the collection on receipt. Delivery is
// best-effort, which is fine because every notification is a hint to
// refresh, not a diff to apply.
type Notifier struct {
	client *redis.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(client *redis.Client) *Notifier {
	return &Notifier{client: client}
}

// ChannelName returns the pub/sub channel for one user's view of one
// collection.
func ChannelName(collection, userID string) string {
	return fmt.Sprintf("mypocket:changes:%s:%s", collection, userID)
}

// Publish implements usecase.ChangePublisher.
func (n *Notifier) Publish(ctx context.Context, collection, userID string) error {
	return n.client.Publish(ctx, ChannelName(collection, userID), "changed").Err()
}

// Subscribe opens a pub/sub subscription for one (collection, user) channel.
// The caller owns the returned subscription and must close it.
func (n *Notifier) Subscribe(ctx context.Context, collection, userID string) *redis.PubSub {
	return n.client.Subscribe(ctx, ChannelName(collection, userID))
}
