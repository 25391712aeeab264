package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/comigor/creatorvault/internal/apperr"
	"github.com/comigor/creatorvault/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

// RespondJSON writes a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.L.Error("encode json response", "error", err)
	}
}

// RespondError writes a JSON error response with the given status code and message.
func RespondError(w http.ResponseWriter, statusCode int, message string) {
	RespondJSON(w, statusCode, errorResponse{Error: message})
}

// RespondErr maps err to a status code by its apperr kind.
func RespondErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrCompletionFailure):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		logger.L.Error("unhandled error", "error", err)
		RespondError(w, status, "internal error")
		return
	}
	RespondError(w, status, err.Error())
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.New(apperr.KindInvalidInput, "malformed request body", err)
	}
	return nil
}
