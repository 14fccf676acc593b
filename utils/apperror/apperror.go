// Package apperror defines the error taxonomy for the payment and
// enrollment flow. Every error crossing a service boundary is one of
// these kinds so handlers can map it to an HTTP status without
// inspecting message strings.
package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies an error for HTTP mapping
type Kind int

const (
	// KindValidation means caller-supplied data is malformed or missing
	KindValidation Kind = iota
	// KindAuthenticity means a payment signature failed verification
	KindAuthenticity
	// KindNotFound means a referenced entity does not exist
	KindNotFound
	// KindUpstream means a payment-provider call failed
	KindUpstream
	// KindPersistence means a database mutation failed after the
	// signature check succeeded
	KindPersistence
	// KindConfiguration means required credentials or config are absent
	KindConfiguration
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	Code    string // Optional provider-supplied error code
	Err     error  // Wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a caller-data error
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Authenticity returns a signature-verification error
func Authenticity(message string) *Error {
	return &Error{Kind: KindAuthenticity, Message: message}
}

// NotFound returns a missing-entity error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Upstream returns a payment-provider error, carrying the provider's
// code when one was supplied
func Upstream(message, code string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Code: code, Err: err}
}

// Persistence returns a database-mutation error
func Persistence(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// Configuration returns a missing-credentials error
func Configuration(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// KindOf extracts the Kind from err. Unclassified errors map to
// KindPersistence so a raw database error can never surface as success.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindPersistence
}

// HTTPStatus maps an error to the status code the request boundary
// should return
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindAuthenticity:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// MessageOf returns the classified message, or a generic one for
// unclassified errors
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// CodeOf returns the provider-supplied code, if any
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
