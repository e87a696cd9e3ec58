package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two transaction variants. A document's kind is
// resolved once at ingestion; nothing downstream infers it from field
// presence.
type Kind string

const (
	KindExpense Kind = "expense"
	KindTopup   Kind = "topup"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryEntertainment Category = "Entertainment"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills"
	CategoryHealth        Category = "Health"
	CategoryOther         Category = "Other"
)

var validCategories = map[Category]bool{
	CategoryFood:          true,
	CategoryTravel:        true,
	CategoryEntertainment: true,
	CategoryShopping:      true,
	CategoryBills:         true,
	CategoryHealth:        true,
	CategoryOther:         true,
}

// IsValid checks if the category is one of the enumerated set.
func (c Category) IsValid() bool {
	return validCategories[c]
}

// Normalize maps an unknown or missing category to the Other bucket.
func (c Category) Normalize() Category {
	if c.IsValid() {
		return c
	}
	return CategoryOther
}

// TopupSource classifies where a top-up came from.
type TopupSource string

const (
	SourceMonthly TopupSource = "Monthly"
	SourceManual  TopupSource = "Manual"
	SourceGift    TopupSource = "Gift"
	SourceBonus   TopupSource = "Bonus"
	SourceOther   TopupSource = "Other"
)

var validSources = map[TopupSource]bool{
	SourceMonthly: true,
	SourceManual:  true,
	SourceGift:    true,
	SourceBonus:   true,
	SourceOther:   true,
}

// IsValid checks if the source is one of the enumerated set.
func (s TopupSource) IsValid() bool {
	return validSources[s]
}

// Transaction is the tagged union of the two document variants. Category is
// meaningful only when Kind is KindExpense, Source only when Kind is
// KindTopup. Amount is always positive; the sign is implied by Kind.
type Transaction struct {
	CreatedAt time.Time
	Date      Instant
	ID        string
	UserID    string
	Title     string
	Notes     string
	Category  Category
	Source    TopupSource
	Kind      Kind
	Amount    decimal.Decimal
}

// IsExpense reports whether the transaction is the expense variant.
func (t *Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// SignedAmount returns the amount as it affects the wallet: negative for
// expenses, positive for top-ups.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.IsExpense() {
		return t.Amount.Neg()
	}
	return t.Amount
}
