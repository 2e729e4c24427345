package apperror

import (
	"context"
	"errors"
	"fmt"
)

// maxSafeMessageLen bounds how much of an unclassified error's message may
// reach a client. Longer messages are replaced wholesale to avoid leaking
// stack traces or internals.
const maxSafeMessageLen = 200

const genericMessage = "An unexpected error occurred."

// Error is a classified failure: a stable code, a message safe to show to
// clients, an HTTP status, and optional structured details. The wrapped
// cause is kept for logs only and is never serialized to clients.
type Error struct {
	Code        Code
	SafeMessage string
	Status      int
	Details     map[string]any

	cause error
}

// New creates an Error with the status fixed by the code's taxonomy entry.
func New(code Code, safeMessage string) *Error {
	return &Error{
		Code:        code,
		SafeMessage: safeMessage,
		Status:      StatusFor(code),
	}
}

// NewWithStatus creates an Error with an explicit status. Used for
// FETCH_HTTP_ERROR, whose status depends on the upstream response (502 for
// upstream 5xx, 400 otherwise).
func NewWithStatus(code Code, safeMessage string, status int) *Error {
	return &Error{Code: code, SafeMessage: safeMessage, Status: status}
}

// WithDetails attaches structured diagnostic details. Details must only
// carry derived numbers (byte counts, char counts, redirect counts), never
// raw internals.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// WithCause records the underlying error for logging. The cause is
// reachable via errors.Unwrap but excluded from client responses.
func (e *Error) WithCause(cause error) *Error {
	e.cause = cause
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.SafeMessage, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.SafeMessage)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same code. This makes
// errors.Is usable for matching on the taxonomy without sentinel values.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// CodeOf extracts the classification code from any error. Unclassified
// errors report SERVER_ERROR.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeServerError
}

// Classify converts any failure into a classified *Error.
//
// Already-classified errors pass through unchanged, even when wrapped.
// Context deadline expiry maps to FETCH_TIMEOUT, matching the fetcher's
// wall-clock budget semantics. Everything else becomes SERVER_ERROR with
// the underlying message suppressed when it is too long to be trusted.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(CodeFetchTimeout, "Request timed out.").WithCause(err)
	}

	msg := err.Error()
	if len(msg) > maxSafeMessageLen {
		msg = genericMessage
	}
	return New(CodeServerError, msg).WithCause(err)
}
