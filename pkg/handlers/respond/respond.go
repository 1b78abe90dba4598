// Package respond writes JSON responses and maps domain errors to HTTP status codes.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/provisioner"
	"github.com/chris/funding-ledger/pkg/storage"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// BadRequest replies 400 with msg.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, api.Error{Code: "bad_request", Message: msg})
}

// Error maps err onto a status code and writes it. Only caller errors carry
// their message through; storage failures are reported generically.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, code := Status(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", msg),
		)
		msg = http.StatusText(status)
	}
	JSON(w, status, api.Error{Code: code, Message: msg})
}

// Status returns the HTTP status and error code for err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, coordinator.ErrInvalidAmount):
		return http.StatusBadRequest, "invalid_amount"
	case errors.Is(err, coordinator.ErrInvalidOperation):
		return http.StatusBadRequest, "invalid_operation"
	case errors.Is(err, coordinator.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient_funds"
	case errors.Is(err, coordinator.ErrTimeout):
		return http.StatusConflict, "timeout"
	case errors.Is(err, provisioner.ErrFeeAlreadyRefunded):
		return http.StatusConflict, "fee_refunded"
	case errors.Is(err, storage.ErrAccountExists), errors.Is(err, storage.ErrProjectExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, coordinator.ErrNotFound),
		errors.Is(err, storage.ErrAccountNotFound),
		errors.Is(err, storage.ErrTransactionNotFound),
		errors.Is(err, storage.ErrProjectNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, coordinator.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// DecodeJSON decodes the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
