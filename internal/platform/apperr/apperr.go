// Package apperr defines the error kinds surfaced by the order, product and
// customer use cases.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error. A Kind is itself an error so callers can match
// with errors.Is(err, apperr.NotFound).
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	InvalidArgument Kind = "invalid argument"
	NotFound        Kind = "not found"
	Conflict        Kind = "conflict"
	Configuration   Kind = "configuration"
	Payment         Kind = "payment"
	Delivery        Kind = "delivery"
)

// Error carries a human-readable message plus its kind.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New builds an error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an error of the given kind that keeps err in its chain.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
