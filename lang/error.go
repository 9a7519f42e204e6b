package lang

import (
	"errors"
	"log/slog"
	"strings"
)

// Structural errors. These abort the parse of the offending script or
// expression and are returned to the caller of [Parser.ParseScript].
var (
	ErrUnbalanced         = NewError("unbalanced brackets")
	ErrUnterminatedQuote  = NewError("unterminated quote")
	ErrEmptyTag           = NewError("empty tag")
	ErrMultipleVariadic   = NewError("multiple variadic parameters")
	ErrInvalidParameter   = NewError("invalid parameter")
	ErrMaxDepthExceeded   = NewError("maximum call depth exceeded")
	ErrNoParser           = NewError("no parser configured")
	ErrInvalidDefinition  = NewError("invalid definition")
	ErrNativeFunction     = NewError("native function failed")
	ErrInvalidPackageName = NewError("invalid package name")
)

// Binding errors. These are fatal to one call only.
var (
	ErrTooFewArguments  = NewError("too few arguments")
	ErrTooManyArguments = NewError("too many arguments")
	ErrUnknownKeyword   = NewError("unknown keyword argument")
)

// ErrConversion is returned by the strict conversion functions when a value
// cannot represent the requested type.
var ErrConversion = NewError("value conversion failed")

// Resolution errors. Dispatch logs these and substitutes a fallback value.
var (
	ErrUnresolved  = NewError("unresolved name")
	ErrSealed      = NewError("sealed name")
	ErrNotCallable = NewError("value is not callable")
)

// Error carries a message, an optional cause, and attributes for structured
// logging. It implements both error and [slog.LogValuer].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns an Error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError converts err into an *Error, reusing err if it already is one.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error formats as "msg: cause", omitting whichever part is empty.
func (e *Error) Error() string {
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel this error was derived from.
// Errors created by [Error.With] and [Error.Wrap] share their message with
// the sentinel, so errors.Is(err, ErrSealed) holds for decorated copies.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg && t.err == nil && len(t.attrs) == 0
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	merged := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(merged, e.attrs)
	copy(merged[len(e.attrs):], attrs)

	return &Error{msg: e.msg, err: e.err, attrs: merged}
}
