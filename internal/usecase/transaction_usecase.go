package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/feed"
)

// TransactionUseCase handles expense and top-up commands plus the one-shot
// reconciled feed read model.
type TransactionUseCase struct {
	txManager       TransactionManager
	transactionRepo TransactionRepository
	profileRepo     ProfileRepository
	idGen           IDGenerator
	changes         ChangePublisher
	logger          zerolog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	transactionRepo TransactionRepository,
	profileRepo ProfileRepository,
	idGen IDGenerator,
	changes ChangePublisher,
	logger zerolog.Logger,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		profileRepo:     profileRepo,
		idGen:           idGen,
		changes:         changes,
		logger:          logger,
	}
}

// AddExpenseInput represents input for recording an expense.
type AddExpenseInput struct {
	UserID   string
	Title    string
	Category domain.Category
	Amount   decimal.Decimal
	Notes    string
	// Date is optional; an unknown instant means the server assigns the
	// write time, mirroring a store-side timestamp.
	Date domain.Instant
}

// AddExpense records an expense and debits the wallet balance. The document
// insert and the balance decrement happen in one store transaction, so the
// wallet can never reflect a transaction the log does not have, or vice
// versa. Local state is never mutated optimistically: a failed write
// surfaces here and nothing is shown to the user.
func (uc *TransactionUseCase) AddExpense(ctx context.Context, input AddExpenseInput) (*domain.Transaction, error) {
	if err := domain.ValidateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateCategory(input.Category); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	date := input.Date
	if !date.Known {
		date = domain.NewInstant(now)
	}

	record := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		Kind:      domain.KindExpense,
		Title:     input.Title,
		Category:  input.Category,
		Amount:    input.Amount,
		Notes:     input.Notes,
		Date:      date,
		CreatedAt: now,
	}

	if err := uc.writeTransaction(ctx, record); err != nil {
		return nil, err
	}

	uc.notify(ctx, CollectionExpenses, input.UserID)

	return record, nil
}

// AddTopupInput represents input for recording a top-up.
type AddTopupInput struct {
	UserID string
	Title  string
	Source domain.TopupSource
	Amount decimal.Decimal
	Notes  string
	Date   domain.Instant
}

// AddTopup records a top-up and credits the wallet balance atomically with
// the document insert.
func (uc *TransactionUseCase) AddTopup(ctx context.Context, input AddTopupInput) (*domain.Transaction, error) {
	if input.Title == "" {
		input.Title = "Top-up"
	}
	if err := domain.ValidateTitle(input.Title); err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := domain.ValidateSource(input.Source); err != nil {
		return nil, err
	}
	if err := domain.ValidateNotes(input.Notes); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	date := input.Date
	if !date.Known {
		date = domain.NewInstant(now)
	}

	record := &domain.Transaction{
		ID:        uc.idGen.Generate(),
		UserID:    input.UserID,
		Kind:      domain.KindTopup,
		Title:     input.Title,
		Source:    input.Source,
		Amount:    input.Amount,
		Notes:     input.Notes,
		Date:      date,
		CreatedAt: now,
	}

	if err := uc.writeTransaction(ctx, record); err != nil {
		return nil, err
	}

	uc.notify(ctx, CollectionTopups, input.UserID)

	return record, nil
}

// Feed returns the current reconciled feed for a user: both partitions read
// as full snapshots and merged with the same pure function the live
// reconciler uses.
func (uc *TransactionUseCase) Feed(ctx context.Context, userID string) ([]domain.Transaction, error) {
	expenses, err := uc.transactionRepo.ListExpenses(ctx, userID)
	if err != nil {
		return nil, err
	}

	topups, err := uc.transactionRepo.ListTopups(ctx, userID)
	if err != nil {
		return nil, err
	}

	return feed.Merge(expenses, topups), nil
}

func (uc *TransactionUseCase) writeTransaction(ctx context.Context, record *domain.Transaction) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.transactionRepo.CreateTx(ctx, tx, record); err != nil {
		return err
	}

	if err := uc.profileRepo.IncrementBalanceTx(ctx, tx, record.UserID, record.SignedAmount(), record.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// notify publishes change notifications for the written collection and for
// the users collection, whose wallet scalar moved in the same transaction.
func (uc *TransactionUseCase) notify(ctx context.Context, collection, userID string) {
	if uc.changes == nil {
		return
	}

	for _, c := range []string{collection, CollectionUsers} {
		if err := uc.changes.Publish(ctx, c, userID); err != nil {
			uc.logger.Warn().Err(err).Str("collection", c).Str("user_id", userID).Msg("change notification failed; live views catch up on the next change")
		}
	}
}
