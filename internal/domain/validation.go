package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
	ErrNotesTooLong   = errors.New("notes exceed maximum length")
)

// Validation constants
const (
	MaxTitleLength = 120
	MaxNotesLength = 2000
	MaxAmount      = "10000000" // 10 million, well past any pocket money
)

// ValidateAmount validates a transaction amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateTitle validates a transaction title.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)

	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidTitle)
	}

	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidTitle, MaxTitleLength)
	}

	return nil
}

// ValidateNotes validates optional free-text notes.
func ValidateNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return fmt.Errorf("%w: limit is %d characters", ErrNotesTooLong, MaxNotesLength)
	}

	return nil
}

// ValidateCategory validates an expense category. Unlike Normalize, which is
// applied when reading documents written by other clients, writes through
// this service only accept the enumerated set.
func ValidateCategory(category Category) error {
	if !category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, string(category))
	}

	return nil
}

// ValidateSource validates a top-up source.
func ValidateSource(source TopupSource) error {
	if !source.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSource, string(source))
	}

	return nil
}
