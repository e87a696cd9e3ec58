package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is a user's document in the users collection. WalletBalance is an
// independently-mutated running total: it is adjusted by an atomic increment
// alongside each transaction write and is never recomputed by summing the
// transaction log, so it is allowed to disagree with the feed's net flow.
type Profile struct {
	ID                 string
	Email              string
	DisplayName        string
	WalletBalance      decimal.Decimal
	MonthlyPocketMoney decimal.Decimal
	AutoAddEnabled     bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
