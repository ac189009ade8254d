// Package errors defines the client-facing error taxonomy.
//
// Every failure crossing back over the foreign boundary is normalized into
// exactly one of three kinds before the caller sees it:
//
//	KindInternal   task failures, panics, malformed caller JSON, connect
//	               failures, marshaling failures — anything not originating
//	               from the remote function itself
//	KindConvex     an application-level error deliberately raised inside the
//	               remote function; carries an opaque payload re-encoded as JSON
//	KindServer     an unexpected failure surfaced by the backend outside
//	               application control
//
// Errors of this package are created only at the boundary converter and are
// never held long-term. Branch on kind with KindOf, or with errors.Is against
// a kind prototype:
//
//	if convexerrors.KindOf(err) == convexerrors.KindConvex {
//	    payload, _ := convexerrors.ConvexData(err)
//	    ...
//	}
package errors
