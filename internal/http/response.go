package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"suivi/internal/apperror"
)

// ErrorResponse is the error format returned by every endpoint: always an
// `error` field, with a human-readable `message` next to it.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; nothing left to do but log it.
			slog.Error("Failed to encode JSON response", "error", err)
		}
	}
}

// writeError maps a service error to its HTTP status: validation failures
// are 400, missing entities 404 and anything else 500. Internal error
// details are echoed to the caller; fine for an internal tool.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: appErr.Message,
			})
			return
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: appErr.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	})
}
