package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced by the client core.
const (
	CodeTransport    = "TRANSPORT_FAILED"
	CodeRejected     = "REJECTED"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeDecode       = "DECODE_FAILED"
	CodeValidation   = "VALIDATION_FAILED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// GenericMessage is shown when nothing more specific is known.
const GenericMessage = "Something went wrong. Please try again."

// ClientError standardizes errors produced by flows and the identity client.
// Message is always safe to show to the user as a single line.
type ClientError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError constructs a ClientError.
func NewClientError(code, message string, status int, details map[string]any) *ClientError {
	return &ClientError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewTransportError wraps a request that could not be completed.
func NewTransportError(err error) error {
	return &ClientError{
		Code:       CodeTransport,
		Message:    "Unable to reach the identity service. Please try again.",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewRejectedError records a non-success response. 401 and 403 become
// UNAUTHORIZED so callers can drop the session.
func NewRejectedError(status int, message string) error {
	code := CodeRejected
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		code = CodeUnauthorized
	}
	return NewClientError(code, message, status, nil)
}

// NewDecodeError marks a malformed credential.
func NewDecodeError(err error) error {
	return &ClientError{
		Code:       CodeDecode,
		Message:    "invalid session credential",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewClientError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewClientError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewClientError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string) error {
	return NewClientError(CodeConflict, message, http.StatusConflict, nil)
}

func NewInternalError(err error) error {
	return &ClientError{
		Code:       CodeInternal,
		Message:    GenericMessage,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToClientError converts generic errors to ClientError.
func ToClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return &ClientError{
		Code:       CodeInternal,
		Message:    GenericMessage,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a ClientError with the given code.
func HasCode(err error, code string) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Code == code
}

// IsUnauthorized reports whether err means the session is no longer usable.
func IsUnauthorized(err error) bool {
	return HasCode(err, CodeUnauthorized) || HasCode(err, CodeDecode)
}

// UserMessage returns the single-line text to display for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return ToClientError(err).Message
}
