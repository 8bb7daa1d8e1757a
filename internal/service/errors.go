package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
	ErrUsernameTaken          = errors.New("username already taken")
	ErrEmailTaken             = errors.New("email already taken")
	ErrUserNotFound           = errors.New("user not found")
	ErrPostNotFound           = errors.New("post not found")
	ErrForbidden              = errors.New("forbidden")
	ErrStore                  = errors.New("store failure")
)

// ValidationError reports malformed input. Fields maps the JSON field name to
// a message suitable for display next to the form field.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Message: msg, Fields: map[string]string{field: msg}}
}

// storeErr marks an unexpected persistence failure.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
