// Package failure defines the error kinds shared by the data tree, writers and
// the function bridge. Every contract violation surfaces as a *Error whose
// Kind callers can match with errors.Is against the exported sentinels.
package failure

import (
	"errors"
	"strings"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindTypeMismatch
	KindIndexOutOfRange
	KindRangeError
	KindIoError
	KindWriteError
	KindUnknownFunction
	KindUnsupportedValue
	KindInvalidReturnType
	KindCallableFailure
	// KindReleased marks a tree handle dereferenced after its root was released.
	KindReleased
)

var kindNames = [...]string{
	KindUnknown:           "unknown",
	KindTypeMismatch:      "type mismatch",
	KindIndexOutOfRange:   "index out of range",
	KindRangeError:        "range error",
	KindIoError:           "io error",
	KindWriteError:        "write error",
	KindUnknownFunction:   "unknown function",
	KindUnsupportedValue:  "unsupported value",
	KindInvalidReturnType: "invalid return type",
	KindCallableFailure:   "callable failure",
	KindReleased:          "released",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrTypeMismatch      = &Error{Kind: KindTypeMismatch}
	ErrIndexOutOfRange   = &Error{Kind: KindIndexOutOfRange}
	ErrRangeError        = &Error{Kind: KindRangeError}
	ErrIoError           = &Error{Kind: KindIoError}
	ErrWriteError        = &Error{Kind: KindWriteError}
	ErrUnknownFunction   = &Error{Kind: KindUnknownFunction}
	ErrUnsupportedValue  = &Error{Kind: KindUnsupportedValue}
	ErrInvalidReturnType = &Error{Kind: KindInvalidReturnType}
	ErrCallableFailure   = &Error{Kind: KindCallableFailure}
	ErrReleased          = &Error{Kind: KindReleased}
)

// Error is the structured failure returned across the module. Op names the
// operation that failed, Message carries detail (for CallableFailure it is
// the callable's own error text, verbatim) and Err an optional cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

// New builds an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an Error of the given kind around cause. The cause text becomes
// the message when message is empty.
func Wrap(kind Kind, op string, cause error, message string) *Error {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a bare sentinel (or any *Error) of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// MessageOf returns the message of the first *Error in err's chain, falling
// back to err.Error().
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Message != "" {
		return fe.Message
	}
	return err.Error()
}
