package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mypocket/mypocket/internal/adapter/http/dto"
	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/feed"
	"github.com/mypocket/mypocket/internal/infrastructure/metrics"
)

// FeedHandler streams the live reconciled feed over server-sent events.
type FeedHandler struct {
	reconciler *feed.Reconciler
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(reconciler *feed.Reconciler, logger zerolog.Logger, m *metrics.Metrics) *FeedHandler {
	return &FeedHandler{reconciler: reconciler, logger: logger, metrics: m}
}

// Stream subscribes the caller to their live feed. Each event is a complete
// replacement snapshot; clients render the latest event and discard earlier
// ones.
func (h *FeedHandler) Stream(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	sub, err := h.reconciler.Subscribe(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to subscribe", err.Error())
		return
	}
	defer sub.Close()

	if h.metrics != nil {
		h.metrics.FeedSubscriptions.Inc()
		defer h.metrics.FeedSubscriptions.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snap, ok := <-sub.Snapshots():
			if !ok {
				return
			}

			payload, err := json.Marshal(dto.FeedFromSnapshot(snap))
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode feed snapshot")
				continue
			}

			fmt.Fprintf(w, "event: feed\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
