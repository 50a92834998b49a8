// Package apperr defines the error taxonomy shared by storage, repository, service and HTTP layers.
// Every failure surfaced to a caller carries a machine-readable Kind plus a safe human message;
// the wrapped cause is kept for logs only and never rendered to clients.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindNotFound          Kind = "NOT_FOUND"
	KindStorage           Kind = "STORAGE_ERROR"
	KindPersistence       Kind = "PERSISTENCE_ERROR"
	KindAlreadyExists     Kind = "ALREADY_EXISTS"
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrStorage           = &Error{Kind: KindStorage}
	ErrPersistence       = &Error{Kind: KindPersistence}
	ErrAlreadyExists     = &Error{Kind: KindAlreadyExists}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
)

// Error is a categorized failure.
type Error struct {
	Kind    Kind
	Op      string // operation that failed, e.g. "storage.Put"
	Message string // safe to show to API clients
	Field   string // offending input field, validation errors only
	Err     error  // underlying cause
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Field == "" && t.Err == nil && t.Kind == e.Kind
}

// New builds an error without an underlying cause.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an error around cause.
func Wrap(kind Kind, op string, cause error, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

// Validation reports a missing or malformed input field.
func Validation(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

// KindOf returns the kind of the outermost *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As returns the outermost *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
