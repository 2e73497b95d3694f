// Package inputerr defines the error kinds produced by invalid user input.
//
// Every error in the storefront originates from something the user typed or
// clicked. None of them are fatal: they are surfaced as notifications and the
// user resolves them by correcting the input and submitting again.
package inputerr

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Kind classifies an input error for transport and notification layers.
type Kind string

const (
	// KindValidation marks a missing required field.
	KindValidation Kind = "validation"
	// KindAuth marks a credential mismatch.
	KindAuth Kind = "auth"
	// KindFormat marks a value that is present but malformed.
	KindFormat Kind = "format"
)

// ValidationError indicates a required field is missing or empty.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

// AuthError indicates the supplied credentials do not match.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid credentials"
}

// FormatError indicates a value could not be parsed or has the wrong shape.
type FormatError struct {
	Field   string
	Value   string
	Message string
}

func (e *FormatError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// Validation returns a ValidationError for field with the given message.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// Format returns a FormatError for field holding value.
func Format(field, value, msg string) error {
	return &FormatError{Field: field, Value: value, Message: msg}
}

// KindOf reports the kind of the first input error found in err's chain.
// It returns an empty Kind for errors that did not originate from input.
func KindOf(err error) Kind {
	var (
		vErr *ValidationError
		aErr *AuthError
		fErr *FormatError
	)
	switch {
	case errors.As(err, &vErr):
		return KindValidation
	case errors.As(err, &aErr):
		return KindAuth
	case errors.As(err, &fErr):
		return KindFormat
	default:
		return ""
	}
}

// Message returns the human-readable text of the input error in err's chain,
// without any wrapping context added on the way up.
func Message(err error) string {
	var (
		vErr *ValidationError
		aErr *AuthError
		fErr *FormatError
	)
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.As(err, &aErr):
		return aErr.Error()
	case errors.As(err, &fErr):
		return fErr.Error()
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
