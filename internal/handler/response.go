package handler

// RESPONSE HELPERS:
// Every error the mock server sends has the shape Piston itself uses:
//   {"message": "language is required as a string"}
//
// Keeping the shape identical matters: the client turns any non-200 body into the
// diagnostic text of its ExecResponse, so tests read the same strings a real
// Piston instance would produce.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/piston-go/internal/apperror"
	"github.com/sakif/piston-go/internal/executor"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to a status code and sends it.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	switch {
	case errors.Is(err, executor.ErrUnknownRuntime):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.As(err, &appErr):
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}
		writeJSON(w, status, ErrorResponse{Message: appErr.Message})
	default:
		// Never expose internal error details.
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Message: "an internal error occurred",
		})
	}
}
