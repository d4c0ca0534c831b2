// Package handler provides HTTP handlers for the REST API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/remiblancher/jades-signer/internal/api/dto"
	"github.com/remiblancher/jades-signer/internal/api/service"
	"github.com/remiblancher/jades-signer/pkg/jades"
)

// SignHandler handles signing-related HTTP requests.
type SignHandler struct {
	service *service.SignService
}

// NewSignHandler creates a new SignHandler.
func NewSignHandler(signService *service.SignService) *SignHandler {
	return &SignHandler{service: signService}
}

// Sign handles POST /api/v1/jades/sign
func (h *SignHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req dto.SignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Sign(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Verify handles POST /api/v1/jades/verify
func (h *SignHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, &dto.APIError{
			Code:    "INVALID_REQUEST",
			Message: "Invalid JSON request body",
		})
		return
	}

	resp, err := h.service.Verify(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleServiceError maps pipeline errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jades.ErrInvalidPassword):
		respondError(w, http.StatusInternalServerError, &dto.APIError{
			Code:    "KEYSTORE_PASSWORD",
			Message: "Keystore password is incorrect",
		})
	case errors.Is(err, jades.ErrNoPrivateKey):
		respondError(w, http.StatusInternalServerError, &dto.APIError{
			Code:    "KEYSTORE_NO_KEY",
			Message: "Keystore contains no private key",
		})
	case errors.Is(err, jades.ErrMalformedContainer):
		respondError(w, http.StatusInternalServerError, &dto.APIError{
			Code:    "KEYSTORE_MALFORMED",
			Message: "Keystore is not a valid PKCS#12 container",
		})
	default:
		respondError(w, http.StatusInternalServerError, &dto.APIError{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		})
	}
}
