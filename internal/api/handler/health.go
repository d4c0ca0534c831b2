package handler

import (
	"encoding/json"
	"net/http"

	"github.com/remiblancher/jades-signer/internal/api/dto"
	"github.com/remiblancher/jades-signer/internal/api/service"
)

// HealthHandler handles health and readiness endpoints.
type HealthHandler struct {
	version string
	service *service.SignService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(version string, signService *service.SignService) *HealthHandler {
	return &HealthHandler{version: version, service: signService}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Ready handles GET /ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := h.service.Ready()

	allReady := true
	for _, ready := range checks {
		if !ready {
			allReady = false
			break
		}
	}

	status := http.StatusOK
	if !allReady {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, dto.ReadyResponse{Ready: allReady, Checks: checks})
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, apiErr *dto.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiErr)
}
