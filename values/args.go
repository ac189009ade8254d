package values

import (
	"fmt"
	"sort"
	"strings"
)

// Field is one named argument.
type Field struct {
	Name  string
	Value Value
}

// Args is an ordered argument map with keys in sorted order. The backend's
// function call is keyed on a deterministic argument map, so the ordering is
// canonical.
type Args struct {
	fields []Field
}

// EncodeArgs converts caller-supplied raw arguments, each value a
// JSON-encoded string, into an ordered typed argument map.
func EncodeArgs(raw map[string]string) (Args, error) {
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		v, err := FromJSON(raw[name])
		if err != nil {
			return Args{}, fmt.Errorf("argument %q: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return Args{fields: fields}, nil
}

// NewArgs builds an Args directly from typed values, sorting keys.
func NewArgs(fields map[string]Value) Args {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	ordered := make([]Field, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, Field{Name: name, Value: fields[name]})
	}
	return Args{fields: ordered}
}

func (a Args) Len() int { return len(a.fields) }

// Fields returns the arguments in canonical order. Callers must not mutate
// the returned slice.
func (a Args) Fields() []Field { return a.fields }

// Get looks up one argument by name.
func (a Args) Get(name string) (Value, bool) {
	i := sort.Search(len(a.fields), func(i int) bool {
		return a.fields[i].Name >= name
	})
	if i < len(a.fields) && a.fields[i].Name == name {
		return a.fields[i].Value, true
	}
	return Value{}, false
}

// JSON encodes the arguments as a canonical JSON object, keys in order.
func (a Args) JSON() (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range a.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := String(f.Name).JSON()
		if err != nil {
			return "", err
		}
		b.WriteString(key)
		b.WriteByte(':')
		val, err := f.Value.JSON()
		if err != nil {
			return "", fmt.Errorf("argument %q: %w", f.Name, err)
		}
		b.WriteString(val)
	}
	b.WriteByte('}')
	return b.String(), nil
}
