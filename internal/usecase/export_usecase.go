package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/mypocket/mypocket/internal/domain"
)

// FeedReader provides the reconciled feed for export.
type FeedReader interface {
	Feed(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// ExportUseCase streams a user's reconciled feed as CSV.
type ExportUseCase struct {
	feed FeedReader
}

// NewExportUseCase creates a new ExportUseCase.
func NewExportUseCase(feed FeedReader) *ExportUseCase {
	return &ExportUseCase{feed: feed}
}

var csvHeader = []string{"id", "type", "title", "amount", "category", "source", "date", "notes"}

// WriteCSV writes the full feed, one row per transaction, in feed order.
// Transactions with unknown dates get an empty date cell.
func (uc *ExportUseCase) WriteCSV(ctx context.Context, userID string, w io.Writer) error {
	transactions, err := uc.feed.Feed(ctx, userID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range transactions {
		tr := &transactions[i]

		date := ""
		if tr.Date.Known {
			date = tr.Date.Time.Format(time.RFC3339)
		}

		row := []string{
			tr.ID,
			string(tr.Kind),
			tr.Title,
			tr.Amount.String(),
			string(tr.Category),
			string(tr.Source),
			date,
			tr.Notes,
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
