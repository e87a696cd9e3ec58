package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mypocket/mypocket/internal/adapter/http/dto"
	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/analytics"
	"github.com/mypocket/mypocket/internal/domain"
)

// AnalyticsService is the feed access the summary endpoint needs.
type AnalyticsService interface {
	Feed(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// AnalyticsHandler computes feed-derived statistics on request. Everything
// here is a pure function of the feed snapshot taken at request time.
type AnalyticsHandler struct {
	feedUC AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(feedUC AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{feedUC: feedUC}
}

// Summary returns the monthly expense total, net flow and category split.
// month and year default to the current wall-clock month; tz names the
// location the month boundary is computed in.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	loc := time.Local
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timezone", err.Error())
			return
		}
		loc = parsed
	}

	now := time.Now().In(loc)
	month := time.Month(parseIntQuery(r, "month", int(now.Month())))
	year := parseIntQuery(r, "year", now.Year())

	if month < time.January || month > time.December {
		writeError(w, http.StatusBadRequest, "invalid month", "month must be 1-12")
		return
	}

	records, err := h.feedUC.Feed(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SummaryResponse{
		Month:          fmt.Sprintf("%04d-%02d", year, int(month)),
		MonthlyExpense: analytics.MonthlyExpenseTotal(records, month, year, loc),
		NetFlow:        analytics.NetFlow(records),
		Categories:     dto.CategoriesFromAnalytics(analytics.CategoryTotals(records)),
	})
}
