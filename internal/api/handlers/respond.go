package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/vreflex/backend/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case contracts.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, contracts.ErrNoData), errors.Is(err, contracts.ErrSummaryNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrSourceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
