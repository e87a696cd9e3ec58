package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
)

// ProfileUseCase handles profile reads, settings, and the reset-data
// command.
type ProfileUseCase struct {
	txManager       TransactionManager
	profileRepo     ProfileRepository
	transactionRepo TransactionRepository
	changes         ChangePublisher
	logger          zerolog.Logger
}

// NewProfileUseCase creates a new ProfileUseCase.
func NewProfileUseCase(
	txManager TransactionManager,
	profileRepo ProfileRepository,
	transactionRepo TransactionRepository,
	changes ChangePublisher,
	logger zerolog.Logger,
) *ProfileUseCase {
	return &ProfileUseCase{
		txManager:       txManager,
		profileRepo:     profileRepo,
		transactionRepo: transactionRepo,
		changes:         changes,
		logger:          logger,
	}
}

// Identity is what the auth provider asserts about a caller. The core
// treats it as opaque; it only keys documents by UserID.
type Identity struct {
	UserID      string
	Email       string
	DisplayName string
}

// EnsureProfile returns the caller's profile, creating the document with a
// zero wallet balance on first sight of the identity.
func (uc *ProfileUseCase) EnsureProfile(ctx context.Context, identity Identity) (*domain.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, identity.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, domain.ErrProfileNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	profile = &domain.Profile{
		ID:                 identity.UserID,
		Email:              identity.Email,
		DisplayName:        displayNameFor(identity),
		WalletBalance:      decimal.Zero,
		MonthlyPocketMoney: decimal.Zero,
		AutoAddEnabled:     false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	uc.notify(ctx, identity.UserID)

	return profile, nil
}

// GetProfile retrieves a profile by user ID.
func (uc *ProfileUseCase) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

// UpdateSettingsInput represents input for saving budget settings.
type UpdateSettingsInput struct {
	UserID             string
	MonthlyPocketMoney decimal.Decimal
	AutoAddEnabled     bool
}

// UpdateSettings saves the monthly pocket-money target and the auto-add
// flag.
func (uc *ProfileUseCase) UpdateSettings(ctx context.Context, input UpdateSettingsInput) error {
	if input.MonthlyPocketMoney.IsNegative() {
		return fmt.Errorf("%w: monthly pocket money cannot be negative", domain.ErrInvalidAmount)
	}

	if err := uc.profileRepo.UpdateSettings(ctx, input.UserID, input.MonthlyPocketMoney, input.AutoAddEnabled, time.Now().UTC()); err != nil {
		return err
	}

	uc.notify(ctx, input.UserID)

	return nil
}

// ResetData deletes both transaction partitions and zeroes the wallet in a
// single store transaction. This is the only deletion path; transactions
// are otherwise immutable.
func (uc *ProfileUseCase) ResetData(ctx context.Context, userID string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.transactionRepo.DeleteByUserTx(ctx, tx, userID); err != nil {
		return err
	}

	if err := uc.profileRepo.ResetBalanceTx(ctx, tx, userID, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.changes != nil {
		for _, c := range []string{CollectionExpenses, CollectionTopups, CollectionUsers} {
			if err := uc.changes.Publish(ctx, c, userID); err != nil {
				uc.logger.Warn().Err(err).Str("collection", c).Msg("change notification failed after reset")
			}
		}
	}

	return nil
}

func (uc *ProfileUseCase) notify(ctx context.Context, userID string) {
	if uc.changes == nil {
		return
	}

	if err := uc.changes.Publish(ctx, CollectionUsers, userID); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("change notification failed")
	}
}

// displayNameFor falls back to the email's local part, then a generic name,
// when the auth provider supplies no display name.
func displayNameFor(identity Identity) string {
	if identity.DisplayName != "" {
		return identity.DisplayName
	}

	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}

	return "User"
}
