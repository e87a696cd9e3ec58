package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mypocket/mypocket/internal/adapter/http/dto"
	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/domain"
	"github.com/mypocket/mypocket/internal/infrastructure/metrics"
	"github.com/mypocket/mypocket/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	AddExpense(ctx context.Context, input usecase.AddExpenseInput) (*domain.Transaction, error)
	AddTopup(ctx context.Context, input usecase.AddTopupInput) (*domain.Transaction, error)
	Feed(ctx context.Context, userID string) ([]domain.Transaction, error)
}

// TransactionHandler handles expense and top-up HTTP requests.
type TransactionHandler struct {
	transactionUC TransactionService
	metrics       *metrics.Metrics
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService, m *metrics.Metrics) *TransactionHandler {
	return &TransactionHandler{transactionUC: transactionUC, metrics: m}
}

// AddExpense records a new expense for the caller.
func (h *TransactionHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AddExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.transactionUC.AddExpense(r.Context(), req.ToUseCaseInput(identity.UserID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record expense", err.Error())
		return
	}

	h.recordMetrics(record)
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(record))
}

// AddTopup records a new top-up for the caller.
func (h *TransactionHandler) AddTopup(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.AddTopupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	record, err := h.transactionUC.AddTopup(r.Context(), req.ToUseCaseInput(identity.UserID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to record top-up", err.Error())
		return
	}

	h.recordMetrics(record)
	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(record))
}

// Feed returns the caller's merged transaction feed as a one-shot snapshot.
func (h *TransactionHandler) Feed(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	records, err := h.transactionUC.Feed(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FeedResponse{
		Transactions: dto.TransactionsFromDomain(records),
	})
}

func (h *TransactionHandler) recordMetrics(record *domain.Transaction) {
	if h.metrics == nil {
		return
	}

	kind := string(record.Kind)
	h.metrics.TransactionsCreated.WithLabelValues(kind).Inc()
	h.metrics.TransactionAmount.WithLabelValues(kind).Observe(record.Amount.InexactFloat64())
}
