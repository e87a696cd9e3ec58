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

// ProfileService defines the behavior needed by ProfileHandler.
type ProfileService interface {
	EnsureProfile(ctx context.Context, identity usecase.Identity) (*domain.Profile, error)
	UpdateSettings(ctx context.Context, input usecase.UpdateSettingsInput) error
	ResetData(ctx context.Context, userID string) error
}

// ProfileHandler handles profile and settings HTTP requests.
type ProfileHandler struct {
	profileUC ProfileService
	metrics   *metrics.Metrics
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileUC ProfileService, m *metrics.Metrics) *ProfileHandler {
	return &ProfileHandler{profileUC: profileUC, metrics: m}
}

// Me returns the caller's profile, creating it on first sight.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	profile, err := h.profileUC.EnsureProfile(r.Context(), identity)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to load profile", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ProfileFromDomain(profile))
}

// UpdateSettings saves the monthly pocket-money target and auto-add flag.
func (h *ProfileHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.profileUC.UpdateSettings(r.Context(), req.ToUseCaseInput(identity.UserID)); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update settings", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.SettingsUpdates.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reset wipes every transaction and zeroes the wallet in one atomic
// operation.
func (h *ProfileHandler) Reset(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	if err := h.profileUC.ResetData(r.Context(), identity.UserID); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to reset data", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.DataResets.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
