package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"killrvideo-backend/internal/models"
	"killrvideo-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", err.Error(), r))
	case errors.Is(err, services.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", err.Error(), r))
	case errors.Is(err, services.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
	case errors.Is(err, services.ErrUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResp("DEPENDENCY_UNAVAILABLE", "Upstream dependency unavailable", r))
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}

// clampLimit parses a query parameter into a list limit. Missing or
// unparseable values fall back to def; anything above max is capped and
// anything below 1 falls back to def.
func clampLimit(r *http.Request, param string, def, max int) int {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
