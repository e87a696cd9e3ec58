package redis

import (
	"context"
	"testing"
	"time"
)

func TestChannelName(t *testing.T) {
	got := ChannelName("expenses", "user-1")
	want := "mypocket:changes:expenses:user-1"
	if got != want {
		t.Fatalf("ChannelName = %q, want %q", got, want)
	}
}

func TestNotifierPublishReachesSubscriber(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	notifier := NewNotifier(client)
	ctx := context.Background()

	sub := notifier.Subscribe(ctx, "topups", "user-1")
	defer sub.Close()

	// Wait for the subscription to be established before publishing.
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := notifier.Publish(ctx, "topups", "user-1"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if msg.Channel != ChannelName("topups", "user-1") {
			t.Fatalf("message on channel %q", msg.Channel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestNotifierChannelsAreScopedPerUser(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	notifier := NewNotifier(client)
	ctx := context.Background()

	sub := notifier.Subscribe(ctx, "expenses", "user-1")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// A change for another user must not reach this subscription.
	if err := notifier.Publish(ctx, "expenses", "user-2"); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected message on %q", msg.Channel)
	case <-time.After(200 * time.Millisecond):
	}
}
