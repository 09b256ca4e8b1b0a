// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/shopping-cart-service/internal/broker"
	"github.com/fairyhunter13/shopping-cart-service/internal/cart"
	"github.com/fairyhunter13/shopping-cart-service/internal/details"
	"github.com/fairyhunter13/shopping-cart-service/internal/eventstore"
	"github.com/fairyhunter13/shopping-cart-service/internal/inventory"
	"github.com/fairyhunter13/shopping-cart-service/internal/validate"
)

// ResJSON is the uniform response body of the API.
type ResJSON struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body ResJSON) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteJSONError writes an error payload with the given status and code.
func WriteJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ResJSON{StatusCode: status, Message: message, Error: code})
}

// statusForError maps the error taxonomy onto HTTP statuses: malformed
// input 400, command not permitted in current state 409, stale concurrency
// token 412, missing resource 404, broker failure 502.
func statusForError(err error) (status int, code string) {
	var ve *validate.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ve.Code
	}
	var ise *cart.InvalidStateError
	if errors.As(err, &ise) {
		return http.StatusConflict, ise.Reason
	}
	switch {
	case errors.Is(err, eventstore.ErrRevisionConflict):
		return http.StatusPreconditionFailed, "REVISION_CONFLICT"
	case errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, details.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, inventory.ErrConfirmationRejected):
		return http.StatusConflict, "CART_CONFIRMATION_REJECTED"
	case errors.Is(err, broker.ErrBrokerUnavailable):
		return http.StatusBadGateway, "BROKER_UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "INVENTORY_TIMEOUT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// WriteError maps err through the taxonomy and writes it.
func WriteError(w http.ResponseWriter, err error) {
	status, code := statusForError(err)
	WriteJSONError(w, status, code, err.Error())
}
