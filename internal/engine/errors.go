// internal/engine/errors.go
package engine

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an engine failure for callers and the HTTP layer.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeIllegalMove  Code = "ILLEGAL_MOVE"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL"
)

// Error is a typed engine failure with an optional wrapped cause. Legality and
// state-conflict errors are terminal for the request; only Internal failures
// are worth a caller retry.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the code to a response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeIllegalMove:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf extracts the engine code from any error, defaulting to Internal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func errNotFound(id fmt.Stringer) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("game %s not found", id)}
}

func errNotAPlayer() *Error {
	return &Error{Code: CodeForbidden, Message: "not a player in this game"}
}

func errNotYourTurn() *Error {
	return &Error{Code: CodeForbidden, Message: "not your turn"}
}

func errIllegalMove(msg string) *Error {
	return &Error{Code: CodeIllegalMove, Message: msg}
}

func errConflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

func errInvalid(msg string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg}
}

func errInternal(msg string, err error) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}
