package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode identifies the failure category of an Error.
type ErrorCode string

const (
	// ErrCodeAuthFailed means login or registration was rejected or could not complete.
	ErrCodeAuthFailed ErrorCode = "AUTH-001"

	// ErrCodeSessionInvalid means there is no usable session. It never
	// distinguishes why: expired, revoked, unknown user and unreachable
	// profile endpoint all collapse into this code.
	ErrCodeSessionInvalid ErrorCode = "SESSION-001"

	// ErrCodeFetchFailed means a read degraded to "no data".
	ErrCodeFetchFailed ErrorCode = "DATA-001"
	// ErrCodeSubmitFailed means a create request was not accepted.
	ErrCodeSubmitFailed ErrorCode = "DATA-002"

	// ErrCodeNetwork is a transport failure before any response arrived.
	ErrCodeNetwork ErrorCode = "NET-001"

	ErrCodeValidation ErrorCode = "INPUT-001"
	ErrCodeConfig     ErrorCode = "CONFIG-001"
	ErrCodeStore      ErrorCode = "IO-001"
)

// Error is a coded error with an optional HTTP status and user-facing suggestions.
type Error struct {
	Code        ErrorCode
	Message     string
	Status      int
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil && e.Code != ErrCodeAuthFailed && e.Code != ErrCodeSubmitFailed {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}
	for _, s := range e.Suggestions {
		b.WriteString(fmt.Sprintf("\n  • %s", s))
	}
	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a new Error wrapping cause
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithStatus records the HTTP status that produced the error.
func (e *Error) WithStatus(status int) *Error {
	e.Status = status
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// StatusOf returns the HTTP status recorded anywhere in err's chain, or 0.
func StatusOf(err error) int {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Status != 0 {
			return e.Status
		}
		err = stderrors.Unwrap(err)
	}
	return 0
}

// Is reports whether any *Error in err's chain carries code.
func Is(err error, code ErrorCode) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// MessageOf returns the user-facing message of the outermost *Error, or err.Error().
func MessageOf(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewSessionInvalidError is returned when a command needs a session and none is usable.
func NewSessionInvalidError(cause error) *Error {
	return Wrap(ErrCodeSessionInvalid, "not logged in or session expired", cause).
		WithSuggestion("Run 'cycle auth login' to sign in again")
}
