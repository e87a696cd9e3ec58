package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/usecase"
)

// Expenses and top-ups live in separate tables, mirroring the two
// independent collections a feed is merged from.
const (
	insertExpenseSQL = `
		INSERT INTO expenses (id, user_id, title, notes, category, amount, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertTopupSQL = `
		INSERT INTO topups (id, user_id, title, notes, source, amount, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	listExpensesSQL = `
		SELECT id, user_id, title, notes, category, amount, occurred_at, created_at
		FROM expenses
		WHERE user_id = $1
		ORDER BY created_at DESC`

	listTopupsSQL = `
		SELECT id, user_id, title, notes, source, amount, occurred_at, created_at
		FROM topups
		WHERE user_id = $1
		ORDER BY created_at DESC`

	deleteExpensesSQL = `DELETE FROM expenses WHERE user_id = $1`
	deleteTopupsSQL   = `DELETE FROM topups WHERE user_id = $1`
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// CreateTx inserts a transaction record inside an open database transaction.
// The kind picks the table.
func (r *TransactionRepository) CreateTx(ctx context.Context, tx usecase.Transaction, record *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	switch record.Kind {
	case domain.KindExpense:
		_, err := pgxTx.Exec(ctx, insertExpenseSQL,
			record.ID,
			record.UserID,
			record.Title,
			record.Notes,
			string(record.Category),
			decimalToNumeric(record.Amount),
			instantToPgTimestamptz(record.Date),
			timeToPgTimestamptz(record.CreatedAt),
		)

		return err
	case domain.KindTopup:
		_, err := pgxTx.Exec(ctx, insertTopupSQL,
			record.ID,
			record.UserID,
			record.Title,
			record.Notes,
			string(record.Source),
			decimalToNumeric(record.Amount),
			instantToPgTimestamptz(record.Date),
			timeToPgTimestamptz(record.CreatedAt),
		)

		return err
	default:
		return fmt.Errorf("unknown transaction kind %q", record.Kind)
	}
}

// ListExpenses returns the full expense partition for a user.
func (r *TransactionRepository) ListExpenses(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, listExpensesSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows, domain.KindExpense)
}

// ListTopups returns the full top-up partition for a user.
func (r *TransactionRepository) ListTopups(ctx context.Context, userID string) ([]domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, listTopupsSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows, domain.KindTopup)
}

// DeleteByUserTx removes both partitions for a user inside an open database
// transaction.
func (r *TransactionRepository) DeleteByUserTx(ctx context.Context, tx usecase.Transaction, userID string) error {
	pgxTx := tx.(*Tx).PgxTx()

	if _, err := pgxTx.Exec(ctx, deleteExpensesSQL, userID); err != nil {
		return err
	}

	_, err := pgxTx.Exec(ctx, deleteTopupsSQL, userID)

	return err
}

func scanTransactions(rows pgx.Rows, kind domain.Kind) ([]domain.Transaction, error) {
	var records []domain.Transaction

	for rows.Next() {
		var (
			record     domain.Transaction
			variant    string
			amount     pgtype.Numeric
			occurredAt pgtype.Timestamptz
			createdAt  pgtype.Timestamptz
		)

		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Title,
			&record.Notes,
			&variant,
			&amount,
			&occurredAt,
			&createdAt,
		); err != nil {
			return nil, err
		}

		record.Kind = kind
		if kind == domain.KindExpense {
			record.Category = domain.Category(variant)
		} else {
			record.Source = domain.TopupSource(variant)
		}
		record.Amount = numericToDecimal(amount)
		record.Date = pgTimestamptzToInstant(occurredAt)
		record.CreatedAt = createdAt.Time

		records = append(records, record)
	}

	return records, rows.Err()
}
