package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/analytics"
	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/feed"
)

// TransactionResponse represents a transaction in API responses. Date is
// null when the record's occurrence date is unknown; DateUnknown makes the
// distinction explicit for clients.
type TransactionResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
	Source      string          `json:"source,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Date        *time.Time      `json:"date"`
	DateUnknown bool            `json:"date_unknown,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:        t.ID,
		Kind:      string(t.Kind),
		Title:     t.Title,
		Amount:    t.Amount,
		Notes:     t.Notes,
		CreatedAt: t.CreatedAt,
	}

	if t.IsExpense() {
		resp.Category = string(t.Category)
	} else {
		resp.Source = string(t.Source)
	}

	if t.Date.Known {
		date := t.Date.Time
		resp.Date = &date
	} else {
		resp.DateUnknown = true
	}

	return resp
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(records []domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(records))
	for i := range records {
		result[i] = TransactionFromDomain(&records[i])
	}
	return result
}

// FeedResponse represents the reconciled feed in API responses.
type FeedResponse struct {
	Transactions  []*TransactionResponse `json:"transactions"`
	ExpensesStale bool                   `json:"expenses_stale,omitempty"`
	TopupsStale   bool                   `json:"topups_stale,omitempty"`
}

// FeedFromSnapshot converts a feed snapshot to a response.
func FeedFromSnapshot(snap feed.Snapshot) *FeedResponse {
	return &FeedResponse{
		Transactions:  TransactionsFromDomain(snap.Transactions),
		ExpensesStale: snap.ExpensesStale,
		TopupsStale:   snap.TopupsStale,
	}
}

// ProfileResponse represents a profile in API responses.
type ProfileResponse struct {
	ID                 string          `json:"id"`
	Email              string          `json:"email"`
	DisplayName        string          `json:"display_name"`
	WalletBalance      decimal.Decimal `json:"wallet_balance"`
	MonthlyPocketMoney decimal.Decimal `json:"monthly_pocket_money"`
	AutoAddEnabled     bool            `json:"auto_add_enabled"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProfileFromDomain converts a domain profile to a response.
func ProfileFromDomain(p *domain.Profile) *ProfileResponse {
	return &ProfileResponse{
		ID:                 p.ID,
		Email:              p.Email,
		DisplayName:        p.DisplayName,
		WalletBalance:      p.WalletBalance,
		MonthlyPocketMoney: p.MonthlyPocketMoney,
		AutoAddEnabled:     p.AutoAddEnabled,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

// CategoryTotalResponse is one category bucket in the summary.
type CategoryTotalResponse struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// SummaryResponse represents monthly and category analytics.
type SummaryResponse struct {
	Month          string                  `json:"month"`
	MonthlyExpense decimal.Decimal         `json:"monthly_expense"`
	NetFlow        decimal.Decimal         `json:"net_flow"`
	Categories     []CategoryTotalResponse `json:"categories"`
}

// CategoriesFromAnalytics converts category totals to responses.
func CategoriesFromAnalytics(totals []analytics.CategoryTotal) []CategoryTotalResponse {
	result := make([]CategoryTotalResponse, len(totals))
	for i, ct := range totals {
		result[i] = CategoryTotalResponse{
			Category: string(ct.Category),
			Total:    ct.Total,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
