package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/feed"
	"github.com/mypocket/mypocket/internal/usecase"
)

type staticSource struct {
	transactions []domain.Transaction
}

func (s *staticSource) Watch(ctx context.Context, userID string) (<-chan feed.PartitionEvent, error) {
	ch := make(chan feed.PartitionEvent, 1)
	ch <- feed.PartitionEvent{Transactions: s.transactions}

	go func() {
		<-ctx.Done()
		close(ch)
	}()

	return ch, nil
}

// sseRecorder is a thread-safe ResponseWriter for handlers that stream from
// a goroutine while the test polls the body.
type sseRecorder struct {
	mu     sync.Mutex
	header http.Header
	body   strings.Builder
	code   int
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *sseRecorder) Header() http.Header { return r.header }

func (r *sseRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.Write(b)
}

func (r *sseRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.code = code
}

func (r *sseRecorder) Flush() {}

func (r *sseRecorder) Body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body.String()
}

func streamRequest(ctx context.Context, target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	identity := usecase.Identity{UserID: "user-1"}
	return req.WithContext(context.WithValue(ctx, middleware.IdentityContextKey, identity))
}

func TestFeedHandler_StreamDeliversSnapshot(t *testing.T) {
	expenses := &staticSource{transactions: []domain.Transaction{
		{
			ID:     "exp-1",
			Kind:   domain.KindExpense,
			Title:  "Lunch",
			Amount: decimal.RequireFromString("12.50"),
			Date:   domain.NewInstant(time.Now()),
		},
	}}
	topups := &staticSource{}

	reconciler := feed.NewReconciler(expenses, topups, zerolog.Nop())
	h := NewFeedHandler(reconciler, zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := streamRequest(ctx, "/api/v1/feed/stream")
	rec := newSSERecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.Stream(rec, req)
	}()

	waitFor(t, func() bool {
		return strings.Contains(rec.Body(), "exp-1")
	})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after context cancellation")
	}

	body := rec.Body()
	if !strings.Contains(body, "event: feed") {
		t.Fatalf("expected SSE feed event, got %q", body)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("unexpected content type: %q", got)
	}
}

func TestFeedHandler_StreamRequiresIdentity(t *testing.T) {
	h := NewFeedHandler(nil, zerolog.Nop(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed/stream", nil)
	rec := httptest.NewRecorder()

	h.Stream(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
