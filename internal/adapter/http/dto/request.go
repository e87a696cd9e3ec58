package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/usecase"
)

// AddExpenseRequest represents a request to record an expense. Date accepts
// any of the shapes clients have historically sent: an RFC 3339 string, a
// plain YYYY-MM-DD day, or an epoch number. A missing or malformed date is
// not an error; the record is stored with a server-assigned or unknown date.
type AddExpenseRequest struct {
	Title    string          `json:"title"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Notes    string          `json:"notes,omitempty"`
	Date     any             `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddExpenseRequest) ToUseCaseInput(userID string) usecase.AddExpenseInput {
	return usecase.AddExpenseInput{
		UserID:   userID,
		Title:    r.Title,
		Category: domain.Category(r.Category),
		Amount:   r.Amount,
		Notes:    r.Notes,
		Date:     domain.ParseInstant(r.Date),
	}
}

// AddTopupRequest represents a request to record a top-up.
type AddTopupRequest struct {
	Title  string          `json:"title,omitempty"`
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes,omitempty"`
	Date   any             `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *AddTopupRequest) ToUseCaseInput(userID string) usecase.AddTopupInput {
	return usecase.AddTopupInput{
		UserID: userID,
		Title:  r.Title,
		Source: domain.TopupSource(r.Source),
		Amount: r.Amount,
		Notes:  r.Notes,
		Date:   domain.ParseInstant(r.Date),
	}
}

// UpdateSettingsRequest represents a request to save budget settings.
type UpdateSettingsRequest struct {
	MonthlyPocketMoney decimal.Decimal `json:"monthly_pocket_money"`
	AutoAddEnabled     bool            `json:"auto_add_enabled"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateSettingsRequest) ToUseCaseInput(userID string) usecase.UpdateSettingsInput {
	return usecase.UpdateSettingsInput{
		UserID:             userID,
		MonthlyPocketMoney: r.MonthlyPocketMoney,
		AutoAddEnabled:     r.AutoAddEnabled,
	}
}
