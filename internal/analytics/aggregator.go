// Package analytics derives read-model statistics from the reconciled feed
// and exposes the live wallet balance. Everything here is a pure function of
// a feed snapshot except the balance watcher, which follows the profile's
// denormalized scalar; the two can legitimately disagree (the balance is a
// running total, not a feed sum).
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
)

// MonthlyExpenseTotal sums expense amounts whose normalized date falls in
// the given wall-clock month in loc. Transactions with unknown dates cannot
// be placed in a month and are skipped. An empty match sums to zero.
func MonthlyExpenseTotal(feed []domain.Transaction, month time.Month, year int, loc *time.Location) decimal.Decimal {
	if loc == nil {
		loc = time.Local
	}

	total := decimal.Zero
	for i := range feed {
		tr := &feed[i]
		if !tr.IsExpense() || !tr.Date.Known {
			continue
		}

		local := tr.Date.Time.In(loc)
		if local.Month() == month && local.Year() == year {
			total = total.Add(tr.Amount)
		}
	}

	return total
}

// CategoryTotal is one category's accumulated expense amount.
type CategoryTotal struct {
	Category domain.Category
	Total    decimal.Decimal
}

// CategoryTotals buckets all expense amounts by category. Documents written
// by other clients may carry categories outside the enumerated set; those
// bucket under Other, so the buckets always partition the full expense set.
// The result is ordered by total descending, ties by category name
// ascending.
func CategoryTotals(feed []domain.Transaction) []CategoryTotal {
	buckets := make(map[domain.Category]decimal.Decimal)
	for i := range feed {
		tr := &feed[i]
		if !tr.IsExpense() {
			continue
		}

		category := tr.Category.Normalize()
		buckets[category] = buckets[category].Add(tr.Amount)
	}

	totals := make([]CategoryTotal, 0, len(buckets))
	for category, total := range buckets {
		totals = append(totals, CategoryTotal{Category: category, Total: total})
	}

	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Category < totals[j].Category
		}
		return totals[i].Total.GreaterThan(totals[j].Total)
	})

	return totals
}

// NetFlow is sum(top-ups) - sum(expenses) over the full feed. It is a
// feed-derived statistic and deliberately independent of the wallet
// balance.
func NetFlow(feed []domain.Transaction) decimal.Decimal {
	flow := decimal.Zero
	for i := range feed {
		flow = flow.Add(feed[i].SignedAmount())
	}

	return flow
}
