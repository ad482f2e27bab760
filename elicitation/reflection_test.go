package elicitation

import (
	"errors"
	"testing"
	"time"
)

type sample struct {
	Name  string  `json:"name" jsonschema:"minLength=1,description=User name"`
	Alias *string `json:"alias" jsonschema:"description=Optional alias"`
	Age   int     `json:"age" jsonschema:"minimum=0,maximum=120,description=Age in years"`
	Skip  string  `json:"-"`
	Kind  string  `json:"kind" jsonschema:"enum=basic,enum=pro,description=Account type"`
	Score float64 `json:"score,omitempty" jsonschema:"default=1.5"`
	Agree bool    `json:"agree" jsonschema:"title=Agree"`
}

func TestSchemaOf_Shape(t *testing.T) {
	sch, err := SchemaOf[sample]()
	if err != nil {
		t.Fatalf("SchemaOf failed: %v", err)
	}

	wantKinds := map[string]Kind{
		"name":  KindText,
		"alias": KindText,
		"age":   KindInteger,
		"kind":  KindText,
		"score": KindDecimal,
		"agree": KindBoolean,
	}
	if sch.Len() != len(wantKinds) {
		t.Fatalf("expected %d fields, got %d", len(wantKinds), sch.Len())
	}
	for name, k := range wantKinds {
		f, ok := sch.Field(name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		if f.Kind != k {
			t.Fatalf("field %s kind = %s, want %s", name, f.Kind, k)
		}
	}
	if _, ok := sch.Field("Skip"); ok {
		t.Fatalf("json:\"-\" field must be skipped")
	}

	req := toStringSet(anySlice(sch.Required()))
	for _, name := range []string{"name", "age", "kind", "agree"} {
		if _, ok := req[name]; !ok {
			t.Fatalf("%s should be required", name)
		}
	}
	for _, name := range []string{"alias", "score"} {
		if _, ok := req[name]; ok {
			t.Fatalf("%s should be optional", name)
		}
	}

	name, _ := sch.Field("name")
	if name.Description != "User name" || name.MinLength == nil || *name.MinLength != 1 {
		t.Fatalf("name constraints not reflected: %#v", name)
	}
	age, _ := sch.Field("age")
	if *age.Minimum != 0 || *age.Maximum != 120 {
		t.Fatalf("age range not reflected: %#v", age)
	}
	kind, _ := sch.Field("kind")
	if len(kind.Enum) != 2 || kind.Enum[0] != "basic" || kind.Enum[1] != "pro" {
		t.Fatalf("kind enum not reflected: %#v", kind.Enum)
	}
	score, _ := sch.Field("score")
	if score.Default != 1.5 {
		t.Fatalf("score default = %#v", score.Default)
	}
	agree, _ := sch.Field("agree")
	if agree.Title != "Agree" {
		t.Fatalf("agree title = %q", agree.Title)
	}
}

func anySlice(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func TestSchemaOf_Cached(t *testing.T) {
	a, err := SchemaOf[sample]()
	if err != nil {
		t.Fatalf("SchemaOf: %v", err)
	}
	b, _ := SchemaFor(&sample{})
	if a != b {
		t.Fatalf("expected cached schema instance")
	}
}

type nestedStruct struct {
	Name    string `json:"name"`
	Address struct {
		Street string `json:"street"`
	} `json:"address"`
}

type withSlice struct {
	Tags []string `json:"tags"`
}

type withMap struct {
	Meta map[string]string `json:"meta"`
}

type withInterface struct {
	Anything any `json:"anything"`
}

func TestSchemaOf_RejectsComposites(t *testing.T) {
	cases := map[string]func() (*Schema, error){
		"nested struct": SchemaOf[nestedStruct],
		"slice":         SchemaOf[withSlice],
		"map":           SchemaOf[withMap],
		"interface":     SchemaOf[withInterface],
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fn()
			if !errors.Is(err, ErrUnsupportedType) {
				t.Fatalf("expected ErrUnsupportedType, got %v", err)
			}
		})
	}
}

func TestSchemaFor_Errors(t *testing.T) {
	if _, err := SchemaFor(nil); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for nil, got %v", err)
	}
	if _, err := SchemaFor(5); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for int, got %v", err)
	}
	if _, err := SchemaFor(time.Second); !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema for duration, got %v", err)
	}
}

func TestAccepted_DecodeIntoStruct(t *testing.T) {
	sch := MustSchemaOf[sample]()
	data, err := Validate(sch, map[string]any{
		"name":  "Ada",
		"age":   float64(36),
		"kind":  "pro",
		"agree": true,
	})
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	var out sample
	if err := (Accepted{Data: data}).Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out.Name != "Ada" || out.Age != 36 || out.Kind != "pro" || !out.Agree || out.Score != 1.5 || out.Alias != nil {
		t.Fatalf("unexpected decode: %#v", out)
	}
}
