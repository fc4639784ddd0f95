package model

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or missing input fields.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a product code or sale id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock marks a sale larger than the available stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrFormat marks a persisted or imported document with the wrong shape.
	ErrFormat = errors.New("invalid document format")
	// ErrDeclined is returned when the operator declines a destructive action.
	ErrDeclined = errors.New("operation declined")
)

// ValidationError describes which input field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation as the sentinel of every ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError carries the stock that was available at the time.
type InsufficientStockError struct {
	Code      string
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d", e.Code, e.Requested, e.Available)
}

// Is reports ErrInsufficientStock as the sentinel.
func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }
