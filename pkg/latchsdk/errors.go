package latchsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ============================================================================
// Latch Error Codes
// ============================================================================

// Error codes reported by the Latch service. The service may return codes
// beyond this list; always compare by value (errors.Is or ErrorMatches),
// never by variable identity.
const (
	ErrorCodeBadRequest         = "bad_request"
	ErrorCodeMissingArguments   = "missing_arguments"
	ErrorCodeInvalidArguments   = "invalid_arguments"
	ErrorCodeMissingAccessKey   = "missing_access_key"
	ErrorCodeInvalidAccessKey   = "invalid_access_key"
	ErrorCodeInvalidOTPCode     = "invalid_otp_code"
	ErrorCodeTooManyOTPAttempts = "too_many_otp_attempts"
	ErrorCodeLinkExpired        = "link_expired"
	ErrorCodeLinkPending        = "link_pending"
	ErrorCodeServerError        = "server_error"
)

// Error codes generated locally by the SDK, never by the service. They use a
// distinct prefix so they can never collide with a server-declared code.
const (
	ErrorCodeNetworkError = "client_network_error"
	ErrorCodeDecodeError  = "client_decode_error"
	ErrorCodeEncodeError  = "client_encode_error"
	ErrorCodeTokenError   = "client_token_error"
)

// ============================================================================
// Error - structured error type
// ============================================================================

// Error is the structured error surfaced by every SDK operation.
//
// Identity is defined solely by Code: two Errors with the same Code are equal
// under errors.Is regardless of their Description, Message or cause. Values
// are immutable; the With* methods return modified copies and never mutate
// the receiver, so the predefined Err* values stay pristine.
type Error struct {
	// Code identifies the failure. Never empty; set at construction only.
	Code string

	// Description is a human-readable description of the failure.
	Description string

	// Message is optional free text the service attached to the error.
	Message string

	cause error
}

// NewError creates a new Error with the given code and description.
// The code must be non-empty.
func NewError(code, description string) *Error {
	if code == "" {
		panic("latchsdk: error code must not be empty")
	}
	return &Error{Code: code, Description: description}
}

// Error implements the error interface. The text prefers Description, then
// the cause's message, then a generic "error [code]" string. The service's
// free-text Message is appended when present.
func (e *Error) Error() string {
	s := e.Description
	if s == "" && e.cause != nil {
		s = e.cause.Error()
	}
	if s == "" {
		s = fmt.Sprintf("error [%s]", e.Code)
	}
	if e.Message != "" {
		s = fmt.Sprintf("%s (%s)", s, e.Message)
	}
	return s
}

// Is reports whether target is an *Error with the same code. This makes
// errors.Is(err, latchsdk.ErrInvalidOTPCode) match any error in the chain
// carrying that code, regardless of description or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// WithDescription returns a copy of the error with the given description.
func (e *Error) WithDescription(description string) *Error {
	c := *e
	c.Description = description
	return &c
}

// WithMessage returns a copy of the error with the given free-text message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.cause = cause
	return &c
}

// ErrorMatches reports whether err carries the given error code anywhere in
// its chain. It is the code-comparison convenience for callers matching
// against codes that have no predefined Err* value.
func ErrorMatches(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrBadRequest is returned when the request is malformed.
	ErrBadRequest = NewError(ErrorCodeBadRequest, "the request is malformed")

	// ErrMissingArguments is returned when a required argument is absent.
	ErrMissingArguments = NewError(ErrorCodeMissingArguments, "the request is missing required arguments")

	// ErrInvalidArguments is returned when an argument has an invalid value.
	ErrInvalidArguments = NewError(ErrorCodeInvalidArguments, "the request arguments are invalid")

	// ErrMissingAccessKey is returned when an exchange call carries no access key.
	ErrMissingAccessKey = NewError(ErrorCodeMissingAccessKey, "the request is missing an access key")

	// ErrInvalidAccessKey is returned when the presented access key is not valid.
	ErrInvalidAccessKey = NewError(ErrorCodeInvalidAccessKey, "the access key is invalid")

	// ErrInvalidOTPCode is returned when an OTP verification code is wrong.
	ErrInvalidOTPCode = NewError(ErrorCodeInvalidOTPCode, "the code is invalid")

	// ErrTooManyOTPAttempts is returned after too many failed OTP verifications.
	ErrTooManyOTPAttempts = NewError(ErrorCodeTooManyOTPAttempts, "too many invalid verification attempts")

	// ErrLinkExpired is returned when a magic or enchanted link expired before
	// it was confirmed.
	ErrLinkExpired = NewError(ErrorCodeLinkExpired, "the link expired")

	// ErrLinkPending is returned while an enchanted link is still awaiting
	// out-of-band confirmation. The polling engine treats it as the expected
	// steady state.
	ErrLinkPending = NewError(ErrorCodeLinkPending, "the link is pending confirmation")

	// ErrServerError is returned when the service failed to handle the request.
	ErrServerError = NewError(ErrorCodeServerError, "internal server error")

	// ErrNetworkError is returned when no response was received at all.
	ErrNetworkError = NewError(ErrorCodeNetworkError, "the request failed with a network error")

	// ErrDecodeError is returned when a response body could not be decoded.
	ErrDecodeError = NewError(ErrorCodeDecodeError, "the response could not be decoded")

	// ErrEncodeError is returned when a request body could not be encoded.
	ErrEncodeError = NewError(ErrorCodeEncodeError, "the request could not be encoded")

	// ErrTokenError is returned when a success response carried no usable
	// session token.
	ErrTokenError = NewError(ErrorCodeTokenError, "the session token could not be read")
)

// ============================================================================
// Error Classification
// ============================================================================

// errorResponse is the wire shape of a Latch error body.
type errorResponse struct {
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
	Message          string `json:"message"`
}

// classifyResponse turns a non-success response into a structured Error.
// It is a pure function of the status code and body bytes.
func classifyResponse(statusCode int, body []byte) *Error {
	var raw errorResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return ErrDecodeError.
			WithDescription(fmt.Sprintf("failed to decode error response (HTTP %d)", statusCode)).
			WithCause(err)
	}
	if raw.ErrorCode == "" {
		// Decodable JSON but not a Latch error body. Classify by status.
		return ErrServerError.
			WithMessage(fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)))
	}

	e := &Error{Code: raw.ErrorCode, Description: raw.ErrorDescription}
	if raw.Message != "" {
		e = e.WithMessage(raw.Message)
	}
	return e
}

// classifyTransport turns a transport failure (no response obtained) into a
// structured Error. Errors that are already structured pass through
// unchanged, and context cancellation surfaces as the context's own error so
// callers see a distinct cancellation signal rather than a network error.
func classifyTransport(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	return ErrNetworkError.WithCause(err)
}
