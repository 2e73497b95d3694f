package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/checkout"
	"github.com/xenking/storefront/internal/domain/contact"
	"github.com/xenking/storefront/internal/domain/inputerr"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/schedule"
	"github.com/xenking/storefront/internal/storefront"
)

// apiError is the error member of a response body.
type apiError struct {
	Code    int
	Kind    string
	Message string
}

// classify maps err to the status and kind reported to the client. Input
// errors carry their own message; anything unexpected is a 500 whose
// message does not leak internals.
func classify(err error) apiError {
	switch kind := inputerr.KindOf(err); kind {
	case inputerr.KindValidation, inputerr.KindFormat:
		return apiError{Code: http.StatusUnprocessableEntity, Kind: string(kind), Message: inputerr.Message(err)}
	case inputerr.KindAuth:
		return apiError{Code: http.StatusUnauthorized, Kind: string(kind), Message: inputerr.Message(err)}
	}

	switch {
	case errors.Is(err, checkout.ErrInProgress):
		return apiError{Code: http.StatusConflict, Kind: "conflict", Message: "checkout in progress"}
	case errors.Is(err, contact.ErrBusy):
		return apiError{Code: http.StatusConflict, Kind: "conflict", Message: "message is already being sent"}
	case errors.Is(err, product.ErrNotFound):
		return apiError{Code: http.StatusNotFound, Kind: "not_found", Message: "product not found"}
	case errors.Is(err, storefront.ErrTooManySessions):
		return apiError{Code: http.StatusServiceUnavailable, Kind: "unavailable", Message: "too many sessions"}
	case errors.Is(err, storefront.ErrRegistryClosed):
		return apiError{Code: http.StatusServiceUnavailable, Kind: "unavailable", Message: "server is shutting down"}
	case errors.Is(err, schedule.ErrClosed):
		return apiError{Code: http.StatusGone, Kind: "session_closed", Message: "session expired"}
	case errors.As(err, new(*badRequestError)):
		return apiError{Code: http.StatusBadRequest, Kind: "bad_request", Message: "malformed request body"}
	default:
		return apiError{Code: http.StatusInternalServerError, Kind: "internal", Message: "internal server error"}
	}
}

// badRequestError marks a body that could not be read or decoded.
type badRequestError struct{ err error }

func (e *badRequestError) Error() string { return "bad request: " + e.err.Error() }

func (e *badRequestError) Unwrap() error { return e.err }
