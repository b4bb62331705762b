// README: Error taxonomy shared by all module services; mapped to HTTP codes in internal/http.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Services return errors built with the constructors below;
// errors.Is against these decides the HTTP status.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrPrecondition = errors.New("precondition failed")
	ErrValidation   = errors.New("validation failed")
)

type kindError struct {
	kind error
	msg  string
}

func (e kindError) Error() string { return e.msg }
func (e kindError) Unwrap() error { return e.kind }

func NotFound(msg string) error  { return kindError{ErrNotFound, msg} }
func Forbidden(msg string) error { return kindError{ErrForbidden, msg} }
func Conflict(msg string) error  { return kindError{ErrConflict, msg} }

func Conflictf(format string, a ...any) error {
	return kindError{ErrConflict, fmt.Sprintf(format, a...)}
}

func Precondition(msg string) error { return kindError{ErrPrecondition, msg} }

func Preconditionf(format string, a ...any) error {
	return kindError{ErrPrecondition, fmt.Sprintf(format, a...)}
}

func Validation(msg string) error { return kindError{ErrValidation, msg} }
