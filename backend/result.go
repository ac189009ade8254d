package backend

import "github.com/get-convex/convex-mobile/values"

type resultKind uint8

const (
	resultValue resultKind = iota
	resultErrorMessage
	resultConvexError
)

// FunctionResult is the three-way outcome the backend produces for every
// query, mutation, action and subscription item: a success value, an
// application-raised error, or a server-raised error message. It is consumed
// exactly once per call by the boundary converter.
type FunctionResult struct {
	value   values.Value
	data    values.Value
	message string
	kind    resultKind
}

// ValueResult wraps a successful result value.
func ValueResult(v values.Value) FunctionResult {
	return FunctionResult{kind: resultValue, value: v}
}

// ErrorMessageResult wraps a server-raised error message.
func ErrorMessageResult(message string) FunctionResult {
	return FunctionResult{kind: resultErrorMessage, message: message}
}

// ConvexErrorResult wraps an application error deliberately raised inside the
// remote function, with its opaque structured payload.
func ConvexErrorResult(message string, data values.Value) FunctionResult {
	return FunctionResult{kind: resultConvexError, message: message, data: data}
}

// Value returns the success value, if this result holds one.
func (r FunctionResult) Value() (values.Value, bool) {
	return r.value, r.kind == resultValue
}

// ErrorMessage returns the server error message, if this result holds one.
func (r FunctionResult) ErrorMessage() (string, bool) {
	return r.message, r.kind == resultErrorMessage
}

// ConvexError returns the application error message and payload, if this
// result holds them.
func (r FunctionResult) ConvexError() (message string, data values.Value, ok bool) {
	return r.message, r.data, r.kind == resultConvexError
}
