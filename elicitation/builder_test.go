package elicitation

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestBuilder_BasicSchema(t *testing.T) {
	sch, err := NewBuilder().
		Text("name", Required(), Description("User name"), MinLength(1)).
		Decimal("score", Optional(), Minimum(0), Maximum(100)).
		Enum("tier", []string{"free", "pro"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	js, _ := sch.MarshalJSON()
	var m map[string]any
	_ = json.Unmarshal(js, &m)
	if m["type"] != "object" {
		t.Fatalf("expected object type")
	}
	props := m["properties"].(map[string]any)
	for _, name := range []string{"name", "score", "tier"} {
		if _, ok := props[name]; !ok {
			t.Fatalf("missing %s prop", name)
		}
	}
	tier := props["tier"].(map[string]any)
	if tier["type"] != "string" {
		t.Fatalf("enum field should be typed string, got %v", tier["type"])
	}
}

func TestBuilder_RequiredSet(t *testing.T) {
	sch := NewBuilder().Text("a", Required()).Text("b", Optional()).MustBuild()
	js, _ := sch.MarshalJSON()
	var m map[string]any
	_ = json.Unmarshal(js, &m)
	req := toStringSet(m["required"].([]any))
	if _, ok := req["a"]; !ok {
		t.Fatalf("a must be required")
	}
	if _, ok := req["b"]; ok {
		t.Fatalf("b must not be required")
	}
}

func toStringSet(arr []any) map[string]struct{} {
	s := map[string]struct{}{}
	for _, v := range arr {
		s[v.(string)] = struct{}{}
	}
	return s
}

func TestBuilder_PreservesDeclarationOrder(t *testing.T) {
	sch := NewBuilder().Boolean("zeta").Integer("alpha").Text("mid").MustBuild()
	fields := sch.Fields()
	got := []string{fields[0].Name, fields[1].Name, fields[2].Name}
	want := []string{"zeta", "alpha", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestBuilder_ReuseFails(t *testing.T) {
	b := NewBuilder().Text("a")
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatalf("expected error on reuse")
	}
}

func TestBuilder_CompositeKindRejected(t *testing.T) {
	_, err := NewBuilder().Text("ok").Add("address", Kind("object")).Build()
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	var se *SchemaError
	if !errors.As(err, &se) || se.Field != "address" {
		t.Fatalf("expected SchemaError naming address, got %#v", err)
	}
}

func TestBuilder_InvalidDeclarations(t *testing.T) {
	cases := map[string]*Builder{
		"empty":              NewBuilder(),
		"duplicate":          NewBuilder().Text("a").Text("a"),
		"blank name":         NewBuilder().Text(" "),
		"enum on integer":    NewBuilder().Add("n", KindInteger, func(f *Field) { f.Enum = []string{"1"} }),
		"length on boolean":  NewBuilder().Boolean("b", MinLength(1)),
		"range on text":      NewBuilder().Text("s", Minimum(1)),
		"inverted range":     NewBuilder().Integer("n", Minimum(10), Maximum(1)),
		"inverted length":    NewBuilder().Text("s", MinLength(5), MaxLength(2)),
		"bad default":        NewBuilder().Boolean("b", Default("yes")),
		"default not enum":   NewBuilder().Enum("e", []string{"a", "b"}, Default("c")),
		"fractional default": NewBuilder().Integer("n", Default(1.5)),
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := b.Build()
			if !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestBuilder_DefaultsNormalized(t *testing.T) {
	sch := NewBuilder().
		Integer("party", Default(2)).
		Decimal("budget", Default(100)).
		Text("notes", Default("")).
		Boolean("vip", Default(false)).
		MustBuild()

	want := map[string]any{"party": int64(2), "budget": float64(100), "notes": "", "vip": false}
	for name, v := range want {
		f, ok := sch.Field(name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		if !f.HasDefault() || f.Default != v {
			t.Fatalf("%s default = %#v, want %#v", name, f.Default, v)
		}
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewBuilder().MustBuild()
}
