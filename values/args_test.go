package values

import (
	"strings"
	"testing"
)

func TestEncodeArgs_TypedValues(t *testing.T) {
	args, err := EncodeArgs(map[string]string{
		"a": `false`,
		"b": `42`,
		"c": `42.42`,
		"d": `[1,2,3]`,
		"e": `{"a":1,"b":"foo"}`,
	})
	if err != nil {
		t.Fatalf("EncodeArgs: %v", err)
	}

	a, ok := args.Get("a")
	if !ok {
		t.Fatal("missing argument a")
	}
	if b, ok := a.AsBool(); !ok || b {
		t.Errorf("a = %v, want false", a)
	}

	b, _ := args.Get("b")
	if f, ok := b.AsFloat64(); !ok || f != 42 {
		t.Errorf("b kind %s value %v, want float64 42", b.Kind(), f)
	}
	c, _ := args.Get("c")
	if f, ok := c.AsFloat64(); !ok || f != 42.42 {
		t.Errorf("c kind %s value %v, want float64 42.42", c.Kind(), f)
	}
	if b.Kind() != c.Kind() {
		t.Errorf("whole and fractional numbers decoded to different kinds: %s vs %s", b.Kind(), c.Kind())
	}

	d, _ := args.Get("d")
	items, ok := d.AsArray()
	if !ok || len(items) != 3 {
		t.Fatalf("d = %v, want 3-item array", d)
	}
	for i, want := range []float64{1, 2, 3} {
		if f, _ := items[i].AsFloat64(); f != want {
			t.Errorf("d[%d] = %v, want %v", i, f, want)
		}
	}

	e, _ := args.Get("e")
	fields, ok := e.AsObject()
	if !ok || len(fields) != 2 {
		t.Fatalf("e = %v, want 2-field object", e)
	}
	if f, _ := fields["a"].AsFloat64(); f != 1 {
		t.Errorf("e.a = %v, want 1", f)
	}
	if s, _ := fields["b"].AsString(); s != "foo" {
		t.Errorf("e.b = %q, want foo", s)
	}
}

func TestEncodeArgs_CanonicalOrdering(t *testing.T) {
	args, err := EncodeArgs(map[string]string{
		"zeta":  `1`,
		"alpha": `2`,
		"mid":   `3`,
	})
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, f := range args.Fields() {
		names = append(names, f.Name)
	}
	got := strings.Join(names, ",")
	if got != "alpha,mid,zeta" {
		t.Errorf("field order = %s, want alpha,mid,zeta", got)
	}
}

func TestEncodeArgs_MalformedValue(t *testing.T) {
	_, err := EncodeArgs(map[string]string{
		"good": `1`,
		"bad":  `{not json`,
	})
	if err == nil {
		t.Fatal("expected error for malformed argument")
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("error %q does not name the bad argument", err)
	}
}

func TestEncodeArgs_Empty(t *testing.T) {
	args, err := EncodeArgs(nil)
	if err != nil {
		t.Fatal(err)
	}
	if args.Len() != 0 {
		t.Errorf("Len = %d, want 0", args.Len())
	}
	out, err := args.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if out != "{}" {
		t.Errorf("JSON() = %s, want {}", out)
	}
}

func TestArgs_JSON(t *testing.T) {
	args := NewArgs(map[string]Value{
		"b": String("x"),
		"a": Float64(1),
	})
	out, err := args.JSON()
	if err != nil {
		t.Fatal(err)
	}
	if out != `{"a":1,"b":"x"}` {
		t.Errorf("JSON() = %s", out)
	}
}

func TestArgs_Get_Missing(t *testing.T) {
	args := NewArgs(map[string]Value{"a": Null()})
	if _, ok := args.Get("missing"); ok {
		t.Error("Get reported a missing argument as present")
	}
}
