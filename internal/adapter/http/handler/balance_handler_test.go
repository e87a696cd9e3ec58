package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/analytics"
)

type staticBalanceSource struct {
	balance decimal.Decimal
}

func (s *staticBalanceSource) Watch(ctx context.Context, userID string) (<-chan analytics.BalanceEvent, error) {
	ch := make(chan analytics.BalanceEvent, 1)
	ch <- analytics.BalanceEvent{Balance: s.balance}

	go func() {
		<-ctx.Done()
		close(ch)
	}()

	return ch, nil
}

func TestBalanceHandler_StreamDeliversBalance(t *testing.T) {
	watcher := analytics.NewBalanceWatcher(&staticBalanceSource{
		balance: decimal.RequireFromString("229.50"),
	})
	h := NewBalanceHandler(watcher, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	req := streamRequest(ctx, "/api/v1/balance/stream")
	rec := newSSERecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	waitFor(t, func() bool {
		return strings.Contains(rec.Body(), "229.5")
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after context cancellation")
	}

	if !strings.Contains(rec.Body(), "event: balance") {
		t.Fatalf("expected SSE balance event, got %q", rec.Body())
	}
}

func TestBalanceHandler_StreamRequiresIdentity(t *testing.T) {
	h := NewBalanceHandler(nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/balance/stream", nil)
	rec := httptest.NewRecorder()

	h.Stream(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
