package apperr

import (
	"errors"
	"net/http"
)

// Code classifies an application error for clients and for the HTTP layer.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeEmptyCart       Code = "EMPTY_CART"
	CodeCatalogMismatch Code = "CATALOG_MISMATCH"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeDependency      Code = "DEPENDENCY_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:      http.StatusBadRequest,
	CodeUnauthenticated: http.StatusUnauthorized,
	CodeEmptyCart:       http.StatusBadRequest,
	CodeCatalogMismatch: http.StatusUnprocessableEntity,
	CodeNotFound:        http.StatusNotFound,
	CodeConflict:        http.StatusConflict,
	CodeDependency:      http.StatusBadGateway,
	CodeInternal:        http.StatusInternalServerError,
}

// Error is a coded error. The message is safe to show to end users.
type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) Code() Code { return e.code }

func (e *Error) Message() string { return e.message }

// Is matches another *Error with the same code, so sentinels built with New can be
// compared with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code && (t.message == "" || t.message == e.message)
}

// CodeOf returns the code of the first *Error in the chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return CodeInternal
}

// HTTPStatus maps an error to the status code used in responses.
func HTTPStatus(err error) int {
	if status, ok := statusByCode[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage hides internal details for uncoded errors.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.code != CodeInternal {
		return e.message
	}
	return "internal server error"
}
