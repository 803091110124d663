package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeConfig      ErrorType = "config"
	ErrorTypeRemoteAPI   ErrorType = "remote_api"
	ErrorTypeLedgerRead  ErrorType = "ledger_read"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error carries a classified failure from one of the remote services or
// local inputs. Code is the HTTP status or provider error code when known.
type Error struct {
	Type    ErrorType
	Op      string
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		if e.Code != 0 {
			return fmt.Sprintf("%s: %s error (code %d): %s", e.Op, e.Type, e.Code, msg)
		}
		return fmt.Sprintf("%s: %s error: %s", e.Op, e.Type, msg)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, op, message string) *Error {
	return &Error{Type: t, Op: op, Message: message}
}

// Wrap creates a typed error around err
func Wrap(t ErrorType, op string, err error) *Error {
	return &Error{Type: t, Op: op, Err: err}
}

// Config reports a missing or malformed local input such as the token file.
func Config(op, message string) *Error {
	return New(ErrorTypeConfig, op, message)
}

// RemoteAPI reports an error payload returned by a provider API.
func RemoteAPI(op string, code int, message string) *Error {
	return &Error{Type: ErrorTypeRemoteAPI, Op: op, Code: code, Message: message}
}

// Network reports a transport failure.
func Network(op string, err error) *Error {
	return Wrap(ErrorTypeNetwork, op, err)
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown when err is not typed
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err (or anything it wraps) is a typed error of type t
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 401, 403, 404, 409:
		return false
	default:
		return statusCode >= 500
	}
}

// FromStatus maps an HTTP status code to an error type
func FromStatus(statusCode int) ErrorType {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 404:
		return ErrorTypeNotFound
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}
