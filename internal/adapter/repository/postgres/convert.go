package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/mypocket/mypocket/internal/domain"
)

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// An unknown occurrence date is stored as SQL NULL and comes back as an
// unknown instant, never as a zero time.
func instantToPgTimestamptz(i domain.Instant) pgtype.Timestamptz {
	if !i.Known {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{Time: i.Time, Valid: true}
}

func pgTimestamptzToInstant(t pgtype.Timestamptz) domain.Instant {
	if !t.Valid {
		return domain.UnknownInstant()
	}

	return domain.NewInstant(t.Time)
}
