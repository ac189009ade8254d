package values

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// FromJSON decodes a single JSON document into a Value.
//
// All JSON numbers decode to Float64; see the package documentation for the
// numeric policy. Malformed input returns an error, never a panic.
func FromJSON(s string) (Value, error) {
	var raw any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return Value{}, fmt.Errorf("decode JSON: %w", err)
	}
	return fromAny(raw)
}

func fromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case float64:
		return Float64(x), nil
	case string:
		return String(x), nil
	case []any:
		items := make([]Value, 0, len(x))
		for i, item := range x {
			v, err := fromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, item := range x {
			v, err := fromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = v
		}
		return Object(fields), nil
	default:
		return Value{}, fmt.Errorf("unrepresentable JSON value of type %T", raw)
	}
}

// JSON encodes the value as a JSON string. Object keys are emitted in sorted
// order, Int64 as a plain number, Bytes as a base64 string.
func (v Value) JSON() (string, error) {
	raw, err := v.toAny()
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode JSON: %w", err)
	}
	return string(out), nil
}

func (v Value) toAny() (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindFloat64:
		return v.f, nil
	case KindInt64:
		return v.i, nil
	case KindString:
		return v.s, nil
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.by), nil
	case KindArray:
		items := make([]any, 0, len(v.arr))
		for i, item := range v.arr {
			raw, err := item.toAny()
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, raw)
		}
		return items, nil
	case KindObject:
		fields := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			raw, err := item.toAny()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = raw
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("invalid value kind %d", v.kind)
	}
}
