package values

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindFloat64
	KindInt64
	KindString
	KindBytes
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindFloat64:
		return "float64"
	case KindInt64:
		return "int64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is one backend value. The zero Value is Null.
type Value struct {
	obj  map[string]Value
	arr  []Value
	by   []byte
	s    string
	f    float64
	i    int64
	kind Kind
	b    bool
}

func Null() Value             { return Value{kind: KindNull} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Float64(f float64) Value { return Value{kind: KindFloat64, f: f} }
func Int64(i int64) Value     { return Value{kind: KindInt64, i: i} }
func String(s string) Value   { return Value{kind: KindString, s: s} }
func Bytes(b []byte) Value    { return Value{kind: KindBytes, by: b} }

// Array builds an array value preserving item order.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: items}
}

// Object builds an object value. The map is held, not copied.
func Object(fields map[string]Value) Value {
	return Value{kind: KindObject, obj: fields}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsFloat64() (float64, bool) {
	return v.f, v.kind == KindFloat64
}

func (v Value) AsInt64() (int64, bool) {
	return v.i, v.kind == KindInt64
}

func (v Value) AsString() (string, bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsBytes() ([]byte, bool) {
	return v.by, v.kind == KindBytes
}

func (v Value) AsArray() ([]Value, bool) {
	return v.arr, v.kind == KindArray
}

func (v Value) AsObject() (map[string]Value, bool) {
	return v.obj, v.kind == KindObject
}

// Equal reports deep equality of two values. Float64 values compare with ==,
// so NaN is never equal to itself.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindFloat64:
		return v.f == other.f
	case KindInt64:
		return v.i == other.i
	case KindString:
		return v.s == other.s
	case KindBytes:
		if len(v.by) != len(other.by) {
			return false
		}
		for i := range v.by {
			if v.by[i] != other.by[i] {
				return false
			}
		}
		return true
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, val := range v.obj {
			ov, ok := other.obj[k]
			if !ok || !val.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
