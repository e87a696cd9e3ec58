package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
)

// Collection names in the remote document store.
const (
	CollectionExpenses = "expenses"
	CollectionTopups   = "topups"
	CollectionUsers    = "users"
)

// TransactionRepository defines data access for the expense and top-up
// collections. Listing always returns the full current partition for a user;
// live views are rebuilt from these snapshots, never patched incrementally.
type TransactionRepository interface {
	CreateTx(ctx context.Context, tx Transaction, record *domain.Transaction) error
	ListExpenses(ctx context.Context, userID string) ([]domain.Transaction, error)
	ListTopups(ctx context.Context, userID string) ([]domain.Transaction, error)
	DeleteByUserTx(ctx context.Context, tx Transaction, userID string) error
}

// ProfileRepository defines data access for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	IncrementBalanceTx(ctx context.Context, tx Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error
	UpdateSettings(ctx context.Context, id string, monthlyPocketMoney decimal.Decimal, autoAdd bool, updatedAt time.Time) error
	ResetBalanceTx(ctx context.Context, tx Transaction, id string, updatedAt time.Time) error
	ListAutoAddEnabled(ctx context.Context) ([]*domain.Profile, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ChangePublisher fans a change notification out to live subscriptions of
// one (collection, user). Delivery is best-effort: a lost notification only
// delays a refresh until the next change.
type ChangePublisher interface {
	Publish(ctx context.Context, collection, userID string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
