package dto

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/analytics"
	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/feed"
)

func TestTransactionFromDomain_Expense(t *testing.T) {
	now := time.Now()
	record := &domain.Transaction{
		ID:        "exp-1",
		Kind:      domain.KindExpense,
		Title:     "Lunch",
		Category:  domain.Category("Food"),
		Amount:    decimal.RequireFromString("12.50"),
		Notes:     "canteen",
		Date:      domain.NewInstant(now),
		CreatedAt: now,
	}

	resp := TransactionFromDomain(record)

	if resp.ID != "exp-1" || resp.Kind != "expense" || resp.Category != "Food" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Source != "" {
		t.Fatalf("expense response should not carry a source, got %q", resp.Source)
	}
	if resp.Date == nil || !resp.Date.Equal(now) {
		t.Fatalf("unexpected date: %v", resp.Date)
	}
	if resp.DateUnknown {
		t.Fatalf("known date should not be flagged unknown")
	}
}

func TestTransactionFromDomain_TopupWithUnknownDate(t *testing.T) {
	record := &domain.Transaction{
		ID:        "top-1",
		Kind:      domain.KindTopup,
		Title:     "Birthday gift",
		Source:    domain.SourceGift,
		Amount:    decimal.RequireFromString("50"),
		Date:      domain.UnknownInstant(),
		CreatedAt: time.Now(),
	}

	resp := TransactionFromDomain(record)

	if resp.Kind != "topup" || resp.Source != "Gift" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Category != "" {
		t.Fatalf("top-up response should not carry a category, got %q", resp.Category)
	}
	if resp.Date != nil {
		t.Fatalf("unknown date should serialize as null, got %v", resp.Date)
	}
	if !resp.DateUnknown {
		t.Fatalf("expected DateUnknown to be set")
	}
}

func TestFeedFromSnapshot(t *testing.T) {
	snap := feed.Snapshot{
		Transactions: []domain.Transaction{
			{ID: "a", Kind: domain.KindExpense, Category: "Food"},
			{ID: "b", Kind: domain.KindTopup, Source: domain.SourceManual},
		},
		ExpensesStale: true,
	}

	resp := FeedFromSnapshot(snap)

	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}
	if resp.Transactions[0].ID != "a" || resp.Transactions[1].ID != "b" {
		t.Fatalf("unexpected order: %+v", resp.Transactions)
	}
	if !resp.ExpensesStale || resp.TopupsStale {
		t.Fatalf("unexpected staleness flags: %+v", resp)
	}
}

func TestProfileFromDomain(t *testing.T) {
	now := time.Now()
	profile := &domain.Profile{
		ID:                 "user-1",
		Email:              "kid@example.com",
		DisplayName:        "Kid",
		WalletBalance:      decimal.RequireFromString("229.50"),
		MonthlyPocketMoney: decimal.RequireFromString("500"),
		AutoAddEnabled:     true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	resp := ProfileFromDomain(profile)

	if resp.ID != "user-1" || !resp.WalletBalance.Equal(profile.WalletBalance) {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !resp.AutoAddEnabled {
		t.Fatalf("expected auto add flag to carry over")
	}
}

func TestCategoriesFromAnalytics(t *testing.T) {
	totals := []analytics.CategoryTotal{
		{Category: "Food", Total: decimal.RequireFromString("120.50")},
		{Category: "Travel", Total: decimal.RequireFromString("79.50")},
	}

	resp := CategoriesFromAnalytics(totals)

	if len(resp) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(resp))
	}
	if resp[0].Category != "Food" || !resp[0].Total.Equal(totals[0].Total) {
		t.Fatalf("unexpected category response: %+v", resp[0])
	}
}
