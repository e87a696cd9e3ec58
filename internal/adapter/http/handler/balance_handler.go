package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/mypocket/mypocket/internal/adapter/http/middleware"
	"github.com/mypocket/mypocket/internal/analytics"
)

// BalanceHandler streams the live wallet balance over server-sent events.
// The scalar comes straight from the profile document; it is never
// recomputed from the feed.
type BalanceHandler struct {
	watcher *analytics.BalanceWatcher
	logger  zerolog.Logger
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(watcher *analytics.BalanceWatcher, logger zerolog.Logger) *BalanceHandler {
	return &BalanceHandler{watcher: watcher, logger: logger}
}

// Stream subscribes the caller to their live wallet balance. Each event
// replaces the previous one; a stale event carries the last-known-good
// value.
func (h *BalanceHandler) Stream(w http.ResponseWriter, r *http.Request) {
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

	snapshots, err := h.watcher.Watch(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to subscribe", err.Error())
		return
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
		case snap, ok := <-snapshots:
			if !ok {
				return
			}

			payload, err := json.Marshal(map[string]any{
				"balance": snap.Balance,
				"stale":   snap.Stale,
			})
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode balance snapshot")
				continue
			}

			fmt.Fprintf(w, "event: balance\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
