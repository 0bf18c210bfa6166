package service

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the service error taxonomy. Handlers map these to
// HTTP statuses; anything else is treated as an internal error.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrSelfModification   = errors.New("cannot modify your own account")
)

// ValidationError reports a malformed or out-of-range field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func conflictErr(detail string) error {
	return fmt.Errorf("%w: %s", ErrConflict, detail)
}
