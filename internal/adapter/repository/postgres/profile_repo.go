package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/usecase"
)

const (
	insertProfileSQL = `
		INSERT INTO users (id, email, display_name, wallet_balance, monthly_pocket_money, auto_add_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	getProfileSQL = `
		SELECT id, email, display_name, wallet_balance, monthly_pocket_money, auto_add_enabled, created_at, updated_at
		FROM users
		WHERE id = $1`

	// The balance is a running total. It is only ever moved by deltas, never
	// recomputed from the transaction tables.
	incrementBalanceSQL = `
		UPDATE users
		SET wallet_balance = wallet_balance + $2, updated_at = $3
		WHERE id = $1`

	updateSettingsSQL = `
		UPDATE users
		SET monthly_pocket_money = $2, auto_add_enabled = $3, updated_at = $4
		WHERE id = $1`

	resetBalanceSQL = `
		UPDATE users
		SET wallet_balance = 0, updated_at = $2
		WHERE id = $1`

	listAutoAddSQL = `
		SELECT id, email, display_name, wallet_balance, monthly_pocket_money, auto_add_enabled, created_at, updated_at
		FROM users
		WHERE auto_add_enabled = TRUE
		ORDER BY id`
)

// ProfileRepository implements usecase.ProfileRepository.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// Create creates a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	_, err := r.pool.Exec(ctx, insertProfileSQL,
		profile.ID,
		profile.Email,
		profile.DisplayName,
		decimalToNumeric(profile.WalletBalance),
		decimalToNumeric(profile.MonthlyPocketMoney),
		profile.AutoAddEnabled,
		timeToPgTimestamptz(profile.CreatedAt),
		timeToPgTimestamptz(profile.UpdatedAt),
	)

	return err
}

// GetByID retrieves a profile by ID.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	row := r.pool.QueryRow(ctx, getProfileSQL, id)

	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}

		return nil, err
	}

	return profile, nil
}

// IncrementBalanceTx moves the wallet balance by delta inside an open
// database transaction.
func (r *ProfileRepository) IncrementBalanceTx(ctx context.Context, tx usecase.Transaction, id string, delta decimal.Decimal, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, incrementBalanceSQL, id, decimalToNumeric(delta), timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// UpdateSettings updates the monthly target and auto-add flag.
func (r *ProfileRepository) UpdateSettings(ctx context.Context, id string, monthlyPocketMoney decimal.Decimal, autoAdd bool, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, updateSettingsSQL, id, decimalToNumeric(monthlyPocketMoney), autoAdd, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// ResetBalanceTx zeroes the wallet balance inside an open database
// transaction.
func (r *ProfileRepository) ResetBalanceTx(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, resetBalanceSQL, id, timeToPgTimestamptz(updatedAt))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProfileNotFound
	}

	return nil
}

// ListAutoAddEnabled returns every profile with auto-add switched on.
func (r *ProfileRepository) ListAutoAddEnabled(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := r.pool.Query(ctx, listAutoAddSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}

		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		profile   domain.Profile
		balance   pgtype.Numeric
		target    pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.DisplayName,
		&balance,
		&target,
		&profile.AutoAddEnabled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	profile.WalletBalance = numericToDecimal(balance)
	profile.MonthlyPocketMoney = numericToDecimal(target)
	profile.CreatedAt = createdAt.Time
	profile.UpdatedAt = updatedAt.Time

	return &profile, nil
}
