// Package values converts between the wire-neutral JSON strings crossing the
// foreign boundary and the backend's typed value model.
//
// # Value Model
//
// A Value is a tagged union over the kinds the backend understands:
//
//	Kind        Go representation
//	─────────────────────────────
//	Null        -
//	Bool        bool
//	Float64     float64
//	Int64       int64
//	String      string
//	Bytes       []byte
//	Array       []Value
//	Object      map[string]Value
//
// # Numeric Policy
//
// Every JSON number decodes to Float64. No integer kind is produced on the
// decode path; Int64 exists only for values originating from the backend and
// encodes back to JSON as a plain number. This is a deliberate protocol
// simplification shared with the other client bindings.
//
// # Argument Ordering
//
// EncodeArgs produces an Args with keys in sorted order. The backend keys its
// function calls on a deterministic argument map, so the ordering is part of
// the contract, not a cosmetic choice.
package values
