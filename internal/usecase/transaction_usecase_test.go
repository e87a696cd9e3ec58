package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mypocket/mypocket/internal/domain"
)

func newTransactionFixture() (*TransactionUseCase, *fakeTxManager, *fakeTransactionRepo, *fakeProfileRepo, *fakePublisher) {
	txm := &fakeTxManager{}
	txRepo := &fakeTransactionRepo{}
	profileRepo := &fakeProfileRepo{}
	publisher := &fakePublisher{}

	uc := NewTransactionUseCase(txm, txRepo, profileRepo, &seqIDGenerator{}, publisher, zerolog.Nop())

	return uc, txm, txRepo, profileRepo, publisher
}

func TestTransactionUseCase_AddExpense(t *testing.T) {
	uc, txm, txRepo, profileRepo, publisher := newTransactionFixture()

	record, err := uc.AddExpense(context.Background(), AddExpenseInput{
		UserID:   "user-1",
		Title:    "Lunch",
		Category: domain.CategoryFood,
		Amount:   decimal.RequireFromString("120.50"),
		Notes:    "canteen",
	})
	require.NoError(t, err)

	require.Equal(t, domain.KindExpense, record.Kind)
	require.Equal(t, "id-001", record.ID)
	require.True(t, record.Date.Known, "server assigns the date when the client omits it")

	require.Len(t, txRepo.created, 1)
	require.True(t, txm.lastTx().committed, "document insert and balance change must commit together")

	// The wallet moves by the signed amount in the same transaction.
	require.Len(t, profileRepo.increments, 1)
	require.True(t, profileRepo.increments[0].delta.Equal(decimal.RequireFromString("-120.50")))

	// Both the written collection and the users collection are notified.
	require.Equal(t, []string{"expenses:user-1", "users:user-1"}, publisher.published)
}

func TestTransactionUseCase_AddExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   AddExpenseInput
		wantErr error
	}{
		{
			name: "zero amount",
			input: AddExpenseInput{
				UserID: "user-1", Title: "Lunch", Category: domain.CategoryFood,
				Amount: decimal.Zero,
			},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name: "blank title",
			input: AddExpenseInput{
				UserID: "user-1", Title: " ", Category: domain.CategoryFood,
				Amount: decimal.NewFromInt(10),
			},
			wantErr: domain.ErrInvalidTitle,
		},
		{
			name: "unknown category",
			input: AddExpenseInput{
				UserID: "user-1", Title: "Lunch", Category: domain.Category("Rocketry"),
				Amount: decimal.NewFromInt(10),
			},
			wantErr: domain.ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, txm, _, _, publisher := newTransactionFixture()

			_, err := uc.AddExpense(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)

			require.Empty(t, txm.txs, "invalid input must be rejected before any write begins")
			require.Empty(t, publisher.published)
		})
	}
}

func TestTransactionUseCase_AddExpense_RollsBackOnInsertFailure(t *testing.T) {
	uc, txm, txRepo, profileRepo, publisher := newTransactionFixture()
	txRepo.createErr = errors.New("insert failed")

	_, err := uc.AddExpense(context.Background(), AddExpenseInput{
		UserID: "user-1", Title: "Lunch", Category: domain.CategoryFood,
		Amount: decimal.NewFromInt(10),
	})
	require.Error(t, err)

	require.True(t, txm.lastTx().rolledBack)
	require.Empty(t, profileRepo.increments, "balance must not move when the insert failed")
	require.Empty(t, publisher.published, "no notification for a write that never persisted")
}

func TestTransactionUseCase_AddExpense_RollsBackOnBalanceFailure(t *testing.T) {
	uc, txm, txRepo, profileRepo, publisher := newTransactionFixture()
	profileRepo.incrementErr = errors.New("increment failed")

	_, err := uc.AddExpense(context.Background(), AddExpenseInput{
		UserID: "user-1", Title: "Lunch", Category: domain.CategoryFood,
		Amount: decimal.NewFromInt(10),
	})
	require.Error(t, err)

	// The single-transaction contract: the insert rolls back with the
	// failed increment, so log and wallet cannot drift apart.
	require.True(t, txm.lastTx().rolledBack)
	require.Len(t, txRepo.created, 1, "insert ran but was rolled back with the transaction")
	require.Empty(t, publisher.published)
}

func TestTransactionUseCase_AddTopup(t *testing.T) {
	uc, txm, _, profileRepo, publisher := newTransactionFixture()

	record, err := uc.AddTopup(context.Background(), AddTopupInput{
		UserID: "user-1",
		Source: domain.SourceGift,
		Amount: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	require.Equal(t, domain.KindTopup, record.Kind)
	require.Equal(t, "Top-up", record.Title, "title defaults when omitted")

	require.True(t, txm.lastTx().committed)
	require.Len(t, profileRepo.increments, 1)
	require.True(t, profileRepo.increments[0].delta.Equal(decimal.NewFromInt(500)))

	require.Equal(t, []string{"topups:user-1", "users:user-1"}, publisher.published)
}

func TestTransactionUseCase_AddTopup_RejectsUnknownSource(t *testing.T) {
	uc, _, _, _, _ := newTransactionFixture()

	_, err := uc.AddTopup(context.Background(), AddTopupInput{
		UserID: "user-1",
		Source: domain.TopupSource("Lottery"),
		Amount: decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, domain.ErrInvalidSource)
}

func TestTransactionUseCase_AddExpense_KeepsClientDate(t *testing.T) {
	uc, _, _, _, _ := newTransactionFixture()

	given := domain.NewInstant(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	record, err := uc.AddExpense(context.Background(), AddExpenseInput{
		UserID: "user-1", Title: "Lunch", Category: domain.CategoryFood,
		Amount: decimal.NewFromInt(10),
		Date:   given,
	})
	require.NoError(t, err)
	require.True(t, record.Date.Equal(given))
}

func TestTransactionUseCase_Feed(t *testing.T) {
	uc, _, txRepo, _, _ := newTransactionFixture()

	march5 := domain.NewInstant(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC))
	march1 := domain.NewInstant(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	feb20 := domain.NewInstant(time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC))

	txRepo.expenses = []domain.Transaction{
		{ID: "e1", Kind: domain.KindExpense, Date: march5, Amount: decimal.NewFromInt(200)},
		{ID: "e2", Kind: domain.KindExpense, Date: feb20, Amount: decimal.NewFromInt(50)},
	}
	txRepo.topups = []domain.Transaction{
		{ID: "t1", Kind: domain.KindTopup, Date: march1, Amount: decimal.NewFromInt(1000)},
	}

	feedTxs, err := uc.Feed(context.Background(), "user-1")
	require.NoError(t, err)

	ids := make([]string, len(feedTxs))
	for i, tr := range feedTxs {
		ids[i] = tr.ID
	}
	require.Equal(t, []string{"e1", "t1", "e2"}, ids)
}

func TestTransactionUseCase_Feed_SurfacesRepoError(t *testing.T) {
	uc, _, txRepo, _, _ := newTransactionFixture()
	txRepo.listTopupsErr = errors.New("store unavailable")

	_, err := uc.Feed(context.Background(), "user-1")
	require.Error(t, err)
}
