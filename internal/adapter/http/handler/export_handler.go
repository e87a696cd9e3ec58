package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/infrastructure/metrics"
)

// ExportService writes a user's full transaction history as CSV.
type ExportService interface {
	WriteCSV(ctx context.Context, userID string, w io.Writer) error
}

// ExportHandler handles CSV export requests.
type ExportHandler struct {
	exportUC ExportService
	metrics  *metrics.Metrics
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportUC ExportService, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{exportUC: exportUC, metrics: m}
}

// Export streams the caller's history as a CSV attachment.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	filename := fmt.Sprintf("mypocket-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := h.exportUC.WriteCSV(r.Context(), identity.UserID, w); err != nil {
		// Headers are already out; the broken body is all we can signal.
		return
	}

	if h.metrics != nil {
		h.metrics.ExportRequests.Inc()
	}
}
