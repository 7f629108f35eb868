package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/safehaven/server/internal/common"
)

// respondJSON writes v as a JSON response body
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, map[string]string{"error": message})
}

// respondServiceError maps the service sentinel errors onto HTTP statuses.
// Validation and state errors reach the client for user-facing messaging;
// they are never swallowed or retried here.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrConflict):
		respondWithError(w, http.StatusConflict, "conflict")
	case errors.Is(err, common.ErrInvalidState):
		respondWithError(w, http.StatusConflict, "invalid state")
	default:
		respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}
