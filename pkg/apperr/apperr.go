// Package apperr defines the error taxonomy shared by services and handlers.
// Every error that crosses the service boundary is one of these kinds so the
// routing layer can map it to a status code without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "RESOURCE_NOT_FOUND"
	KindBusinessLogic Kind = "BUSINESS_LOGIC_ERROR"
	KindDatabase      Kind = "DATABASE_ERROR"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, usually a store failure
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the kind to its response status.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return 422
	case KindNotFound:
		return 404
	case KindBusinessLogic:
		return 400
	default:
		return 500
	}
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(resource string, id interface{}) *Error {
	msg := resource + " not found"
	if id != nil {
		msg = fmt.Sprintf("%s not found with id %v", resource, id)
	}
	return &Error{Kind: KindNotFound, Message: msg}
}

func BusinessLogic(format string, args ...interface{}) *Error {
	return &Error{Kind: KindBusinessLogic, Message: fmt.Sprintf(format, args...)}
}

func Database(err error) *Error {
	return &Error{Kind: KindDatabase, Message: "database error occurred", Err: err}
}

// As extracts an *Error from err, if it is one.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
