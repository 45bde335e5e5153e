package httputil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error that knows which HTTP status it maps to.
// Message is safe to return to clients; Err carries internal detail for logs.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError is a 400 for missing or invalid input
func ValidationError(code, message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: message}
}

// AuthError is a 401 for bad credentials or an absent, invalid or expired token
func AuthError(code, message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: code, Message: message}
}

// NotFoundError is a 404 for a missing resource
func NotFoundError(message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

// ConflictError is a 409, e.g. a duplicate email
func ConflictError(code, message string) *Error {
	return &Error{Status: http.StatusConflict, Code: code, Message: message}
}

// UpstreamError is a 500 wrapping a store or unexpected failure.
// The client only ever sees message.
func UpstreamError(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: CodeInternalError, Message: message, Err: err}
}

// StatusLogger is the subset of the logger WriteError needs
type StatusLogger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// WriteError writes err as a JSON error response. Errors that are not *Error
// become a generic 500 and their detail only goes to the log.
func WriteError(w http.ResponseWriter, logger StatusLogger, err error) {
	var httpErr *Error
	if !errors.As(err, &httpErr) {
		httpErr = UpstreamError("internal server error", err)
	}

	if httpErr.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", httpErr.Status, "error", err.Error())
	} else {
		logger.Warn("request rejected", "status", httpErr.Status, "error", err.Error())
	}

	RespondErrorWithCode(w, httpErr.Message, httpErr.Code, httpErr.Status)
}
