package services

import (
	"errors"
	"fmt"

	"reseller_hub/internal/gateway"
)

// ErrInvalidPassphrase rejects a maintenance request whose passphrase does
// not match, or when no passphrase is configured at all.
var ErrInvalidPassphrase = errors.New("invalid admin passphrase")

// ValidationError reports bad input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func required(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ConflictError carries the operator-facing message for a duplicate
// identifier. It still matches gateway.ErrConflict.
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func friendlyConflict(err error, message string) error {
	if errors.Is(err, gateway.ErrConflict) {
		return &ConflictError{Message: message, Err: err}
	}
	return err
}
