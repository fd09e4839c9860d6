// Package errors defines the domain error type shared by services and handlers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// DomainError is a business-rule failure with a stable code and an HTTP status.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches on Code so wrapped copies with a different message still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	return &DomainError{Code: e.Code, Status: e.Status, Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus returns the status to respond with, defaulting to 400.
func (e *DomainError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// As finds the first DomainError in err's chain.
func As(err error) (*DomainError, bool) {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func Is(err, target error) bool { return stderrors.Is(err, target) }

func New(code string, status int, message string) *DomainError {
	return &DomainError{Code: code, Status: status, Message: message}
}

var (
	ErrNotFound          = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrInvalidInput      = New("INVALID_INPUT", http.StatusBadRequest, "invalid input")
	ErrUnauthorized      = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden         = New("FORBIDDEN", http.StatusForbidden, "insufficient permissions")
	ErrConflict          = New("CONFLICT", http.StatusConflict, "resource conflict")
	ErrInvalidTransition = New("INVALID_TRANSITION", http.StatusConflict, "invalid status transition")
)
