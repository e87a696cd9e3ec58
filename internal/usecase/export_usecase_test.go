package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
)

type staticFeed struct {
	transactions []domain.Transaction
	err          error
}

func (f *staticFeed) Feed(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return f.transactions, f.err
}

func TestExportUseCase_WriteCSV(t *testing.T) {
	feed := &staticFeed{transactions: []domain.Transaction{
		{
			ID:       "e1",
			Kind:     domain.KindExpense,
			Title:    "Lunch",
			Category: domain.CategoryFood,
			Amount:   decimal.RequireFromString("120.50"),
			Date:     domain.NewInstant(time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)),
			Notes:    "canteen",
		},
		{
			ID:     "t1",
			Kind:   domain.KindTopup,
			Title:  "Top-up",
			Source: domain.SourceMonthly,
			Amount: decimal.NewFromInt(1000),
			Date:   domain.UnknownInstant(),
		},
	}}

	uc := NewExportUseCase(feed)

	var buf bytes.Buffer
	if err := uc.WriteCSV(context.Background(), "user-1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus two transactions", len(rows))
	}

	if rows[0][0] != "id" || rows[0][1] != "type" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	if rows[1][3] != "120.5" && rows[1][3] != "120.50" {
		t.Errorf("amount cell = %q", rows[1][3])
	}

	if rows[2][6] != "" {
		t.Errorf("unknown date must export as empty cell, got %q", rows[2][6])
	}
}

func TestExportUseCase_WriteCSV_SurfacesFeedError(t *testing.T) {
	uc := NewExportUseCase(&staticFeed{err: errors.New("store down")})

	if err := uc.WriteCSV(context.Background(), "user-1", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}
