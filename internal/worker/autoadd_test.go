package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/usecase"
)

type fakeProfiles struct {
	usecase.ProfileRepository
	profiles []*domain.Profile
	listErr  error
}

func (f *fakeProfiles) ListAutoAddEnabled(ctx context.Context) ([]*domain.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.profiles, nil
}

type fakeTopups struct {
	inputs []usecase.AddTopupInput
	err    error
}

func (f *fakeTopups) AddTopup(ctx context.Context, input usecase.AddTopupInput) (*domain.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, input)
	return &domain.Transaction{ID: fmt.Sprintf("tx-%d", len(f.inputs))}, nil
}

type fakeIdem struct {
	keys map[string][]byte
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{keys: make(map[string][]byte)}
}

func (f *fakeIdem) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if existing, ok := f.keys[key]; ok {
		return true, existing, nil
	}
	f.keys[key] = response
	return false, nil, nil
}

func (f *fakeIdem) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	f.keys[key] = response
	return nil
}

func newTestWorker(profiles *fakeProfiles, topups *fakeTopups, idem *fakeIdem, now time.Time) *AutoAdd {
	w := New(Config{
		Profiles:    profiles,
		Topups:      topups,
		Idempotency: idem,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Location:    time.UTC,
	})
	w.now = func() time.Time { return now }
	return w
}

func autoAddProfile(id string, target string) *domain.Profile {
	return &domain.Profile{
		ID:                 id,
		Email:              id + "@example.com",
		MonthlyPocketMoney: decimal.RequireFromString(target),
		AutoAddEnabled:     true,
	}
}

func TestAutoAddCreditsOnFirstOfMonth(t *testing.T) {
	profiles := &fakeProfiles{profiles: []*domain.Profile{
		autoAddProfile("user-1", "500"),
		autoAddProfile("user-2", "250.50"),
	}}
	topups := &fakeTopups{}
	w := newTestWorker(profiles, topups, newFakeIdem(), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	if len(topups.inputs) != 2 {
		t.Fatalf("got %d top-ups, want 2", len(topups.inputs))
	}
	first := topups.inputs[0]
	if first.UserID != "user-1" || !first.Amount.Equal(decimal.RequireFromString("500")) {
		t.Errorf("unexpected first top-up: %+v", first)
	}
	if first.Source != domain.SourceMonthly {
		t.Errorf("source = %q, want %q", first.Source, domain.SourceMonthly)
	}
	if first.Title != "Monthly pocket money" {
		t.Errorf("title = %q", first.Title)
	}
}

func TestAutoAddSkipsMidMonth(t *testing.T) {
	profiles := &fakeProfiles{profiles: []*domain.Profile{autoAddProfile("user-1", "500")}}
	topups := &fakeTopups{}
	w := newTestWorker(profiles, topups, newFakeIdem(), time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))

	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if len(topups.inputs) != 0 {
		t.Fatalf("got %d top-ups, want 0", len(topups.inputs))
	}
}

func TestAutoAddCreditsOncePerMonth(t *testing.T) {
	profiles := &fakeProfiles{profiles: []*domain.Profile{autoAddProfile("user-1", "500")}}
	topups := &fakeTopups{}
	idem := newFakeIdem()
	w := newTestWorker(profiles, topups, idem, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	for i := 0; i < 3; i++ {
		if err := w.runOnce(context.Background()); err != nil {
			t.Fatalf("runOnce %d: %v", i, err)
		}
	}

	if len(topups.inputs) != 1 {
		t.Fatalf("got %d top-ups, want 1", len(topups.inputs))
	}

	// A new month uses a fresh key.
	w.now = func() time.Time { return time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC) }
	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce april: %v", err)
	}
	if len(topups.inputs) != 2 {
		t.Fatalf("got %d top-ups after new month, want 2", len(topups.inputs))
	}
}

func TestAutoAddSkipsZeroTarget(t *testing.T) {
	profiles := &fakeProfiles{profiles: []*domain.Profile{autoAddProfile("user-1", "0")}}
	topups := &fakeTopups{}
	w := newTestWorker(profiles, topups, newFakeIdem(), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
	if len(topups.inputs) != 0 {
		t.Fatalf("got %d top-ups, want 0", len(topups.inputs))
	}
}

func TestAutoAddContinuesAfterCreditFailure(t *testing.T) {
	profiles := &fakeProfiles{profiles: []*domain.Profile{
		autoAddProfile("user-1", "500"),
		autoAddProfile("user-2", "250"),
	}}
	topups := &fakeTopups{err: errors.New("db down")}
	w := newTestWorker(profiles, topups, newFakeIdem(), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	// Credit failures are logged per profile, not returned.
	if err := w.runOnce(context.Background()); err != nil {
		t.Fatalf("runOnce: %v", err)
	}
}

func TestAutoAddReturnsListError(t *testing.T) {
	profiles := &fakeProfiles{listErr: errors.New("db down")}
	w := newTestWorker(profiles, &fakeTopups{}, newFakeIdem(), time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))

	if err := w.runOnce(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
