package core

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrEmptyPayload means the provider answered without any text.
	ErrEmptyPayload = errors.New("provider returned no payload")
	// ErrMalformedPayload means the provider text did not match the declared response shape.
	ErrMalformedPayload = errors.New("provider returned a malformed payload")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports missing or invalid input caught before any
// provider call or store mutation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// GatewayError wraps every failure of an AI provider round trip. The
// whole call is failed; no partial result accompanies it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ai gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
