// Package serrors provides semantic errors: a Kind sentinel describing the
// category of a failure, an optional message and an optional wrapped cause.
// Transport layers map kinds to status codes with HTTPStatus.
package serrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is implemented by all semantic error kinds created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind identified by name.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrUnauthorized indicates missing or invalid authentication.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrBadRequest indicates invalid input, e.g. a negative candidate or an empty range.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrConflict indicates the operation no longer applies to the current state.
	ErrConflict = NewKind("CONFLICT")
	// ErrInternal indicates an unexpected failure.
	ErrInternal = NewKind("INTERNAL")
	// ErrTimeout indicates the operation timed out or was canceled.
	ErrTimeout = NewKind("TIMEOUT")
)

// Error carries a kind, an optional wrapped cause and an optional message.
//
// errors.Is and errors.As match either the kind or the wrapped cause. Error()
// renders "<msg>: <cause>", "<msg>", "<cause>" or the kind name, in that order
// of preference.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error with the given kind and message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error with the given kind wrapping err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		if e.kind != nil {
			return e.kind.Error()
		}

		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}
	if e.err != nil && errors.Is(e.err, target) {
		return true
	}

	return false
}

func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}
	if e.err != nil && errors.As(e.err, target) {
		return true
	}

	return false
}

// Kind returns the kind associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause (may be nil).
func (e *Error) Cause() error { return e.err }

// KindOf returns the kind carried anywhere in err's chain, or ErrInternal when
// err carries none.
func KindOf(err error) Kind {
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return ErrInternal
}

// ParseKind returns the default kind named name, or ErrInternal for unknown
// names. It reverses Kind.Error for kinds reported over the wire.
func ParseKind(name string) Kind {
	for _, k := range []Kind{ErrNotFound, ErrUnauthorized, ErrBadRequest, ErrConflict, ErrTimeout} {
		if k.Error() == name {
			return k
		}
	}

	return ErrInternal
}

// HTTPStatus maps a kind to the HTTP status code used to report it.
func HTTPStatus(k Kind) int {
	switch k {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrConflict:
		return http.StatusConflict
	case ErrTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
