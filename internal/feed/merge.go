package feed

import (
	"sort"

	"github.com/mypocket/mypocket/internal/domain"
)

// Merge reconciles the two partitions into one feed. It is a pure function
// of its inputs: given the same terminal partition contents, every
// interleaving of partition arrival produces the same result.
//
// Order is newest first by normalized date. Exact timestamp ties break by
// transaction ID ascending so the order is total and stable across runs.
// Transactions whose date failed to normalize sink below all dated ones,
// themselves ordered by ID; they stay visible rather than being dropped.
func Merge(expenses, topups []domain.Transaction) []domain.Transaction {
	merged := make([]domain.Transaction, 0, len(expenses)+len(topups))
	merged = append(merged, expenses...)
	merged = append(merged, topups...)

	sort.Slice(merged, func(i, j int) bool {
		return feedLess(&merged[i], &merged[j])
	})

	return merged
}

func feedLess(a, b *domain.Transaction) bool {
	if a.Date.Equal(b.Date) {
		return a.ID < b.ID
	}
	return a.Date.After(b.Date)
}
