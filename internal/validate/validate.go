// Package validate contains input assertion helpers shared by the HTTP
// layer and the domain command constructors.
package validate

import (
	"errors"
	"strconv"
)

// Validation error codes surfaced to clients.
const (
	CodeNotANonEmptyString  = "NOT_A_NONEMPTY_STRING"
	CodeNotAPositiveNumber  = "NOT_A_POSITIVE_NUMBER"
	CodeNotAnUnsignedNumber = "NOT_AN_UNSIGNED_NUMBER"
	CodeMissingIfMatch      = "MISSING_IF_MATCH_HEADER"
	CodeWrongWeakETagFormat = "WRONG_WEAK_ETAG_FORMAT"
)

// ValidationError reports malformed input. It is always a client error and
// never retried.
type ValidationError struct {
	Code string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Code }

// NewValidationError builds a ValidationError with the given code.
func NewValidationError(code string) error {
	return &ValidationError{Code: code}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AssertNotEmptyString fails when v is empty.
func AssertNotEmptyString(v string) error {
	if v == "" {
		return NewValidationError(CodeNotANonEmptyString)
	}
	return nil
}

// AssertPositiveQuantity fails when q is zero or negative.
func AssertPositiveQuantity(q int64) error {
	if q <= 0 {
		return NewValidationError(CodeNotAPositiveNumber)
	}
	return nil
}

// AssertUnsignedInteger parses s as a base-10 non-negative integer.
func AssertUnsignedInteger(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, NewValidationError(CodeNotAnUnsignedNumber)
	}
	return n, nil
}
