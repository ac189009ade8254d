package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind categorizes the error for the foreign caller.
type Kind string

const (
	KindInternal Kind = "internal_error"
	KindConvex   Kind = "convex_error"
	KindServer   Kind = "server_error"
)

// Error is the structured error type returned by every bridge operation.
type Error struct {
	Cause   error
	Kind    Kind
	Message string
	// Data holds the JSON encoding of an application error payload.
	// Set only for KindConvex.
	Data string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Kind))
	b.WriteString("] ")
	b.WriteString(e.Message)

	if e.Data != "" {
		b.WriteString(": ")
		b.WriteString(e.Data)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two taxonomy errors match
// when their kinds are equal, so errors.Is(err, &Error{Kind: KindConvex})
// tests the kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Internal creates an internal error with a plain message.
func Internal(message string) *Error {
	return &Error{Kind: KindInternal, Message: message}
}

// Internalf creates an internal error with a formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...)}
}

// WrapInternal creates an internal error wrapping a cause.
func WrapInternal(cause error, detail string) *Error {
	return &Error{Kind: KindInternal, Message: detail, Cause: cause}
}

// Convex creates an application error raised inside a remote function.
// data is the JSON encoding of the error payload.
func Convex(message, data string) *Error {
	return &Error{Kind: KindConvex, Message: message, Data: data}
}

// Server creates an error surfaced by the backend outside application control.
func Server(message string) *Error {
	return &Error{Kind: KindServer, Message: message}
}

// KindOf returns the taxonomy kind of err, or "" if err is not a taxonomy
// error. It unwraps the chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// ConvexData extracts the JSON-encoded application payload from a KindConvex
// error. The second return is false for any other error.
func ConvexData(err error) (string, bool) {
	var e *Error
	if stderrors.As(err, &e) && e.Kind == KindConvex {
		return e.Data, true
	}
	return "", false
}

// FromPanic converts a recovered panic value into an internal error.
func FromPanic(recovered any) *Error {
	if err, ok := recovered.(error); ok {
		return WrapInternal(err, "task panicked")
	}
	return Internalf("task panicked: %v", recovered)
}
