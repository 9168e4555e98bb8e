// Package apperror defines the domain error taxonomy shared by the stores,
// services and HTTP handlers.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("Validation Error")
	ErrNotSignedIn = errors.New("not signed in")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// NotSignedIn reports that an operation needs an authenticated identity and
// none is present. It is distinct from a failed identity lookup, which comes
// back as a wrapped store or provider error instead.
// HTTP handlers map this to 401 Unauthorized.
func NotSignedIn() *AppError {
	return &AppError{
		Err:     ErrNotSignedIn,
		Message: "no user is signed in",
	}
}
