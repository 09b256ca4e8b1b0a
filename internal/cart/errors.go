package cart

import "errors"

// Invalid-state reasons.
const (
	ReasonCartNotOpened         = "SHOPPING_CART_NOT_OPENED"
	ReasonCartAlreadyConfirmed  = "SHOPPING_CART_ALREADY_CONFIRMED"
	ReasonNotEnoughProductItems = "NOT_ENOUGH_PRODUCT_ITEMS"
)

// InvalidStateError reports a command that is not permitted in the cart's
// current state. It is a client error and never retried automatically.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return "invalid cart state: " + e.Reason }

func newInvalidStateError(reason string) error {
	return &InvalidStateError{Reason: reason}
}

// IsInvalidStateError reports whether err is (or wraps) an InvalidStateError.
func IsInvalidStateError(err error) bool {
	var e *InvalidStateError
	return errors.As(err, &e)
}
