// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/stockkeeper/internal/model"
	"github.com/fairyhunter13/stockkeeper/internal/obs"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Available *int64 `json:"available,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps the model error taxonomy onto HTTP responses.
func writeDomainError(w http.ResponseWriter, err error) {
	var ise *model.InsufficientStockError
	switch {
	case errors.As(err, &ise):
		available := ise.Available
		writeJSON(w, http.StatusConflict, jsonError{Error: "insufficient_stock", Details: err.Error(), Available: &available})
	case errors.Is(err, model.ErrValidation):
		WriteJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, model.ErrFormat):
		WriteJSONError(w, http.StatusBadRequest, "invalid_backup", err.Error())
	case errors.Is(err, model.ErrDeclined):
		WriteJSONError(w, http.StatusPreconditionRequired, "confirmation_required", "repeat the request with confirm=true")
	default:
		obs.Logger.Error("unexpected_error", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
