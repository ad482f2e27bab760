package elicitation

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func TestSchema_Encoding(t *testing.T) {
	a := NewBuilder().Text("b", Required()).Boolean("a", Required()).MustBuild()
	b := NewBuilder().Boolean("a", Required()).Text("b", Required()).MustBuild()

	ja, _ := a.MarshalJSON()
	jb, _ := b.MarshalJSON()
	wantA := `{"type":"object","properties":{"b":{"type":"string"},"a":{"type":"boolean"}},"required":["a","b"]}`
	wantB := `{"type":"object","properties":{"a":{"type":"boolean"},"b":{"type":"string"}},"required":["a","b"]}`
	if string(ja) != wantA || string(jb) != wantB {
		t.Fatalf("encoding must follow declaration order:\n%s\n%s", ja, jb)
	}
	if a.Fingerprint() != b.Fingerprint() || len(a.Fingerprint()) != 64 {
		t.Fatalf("fingerprints differ or malformed: %s %s", a.Fingerprint(), b.Fingerprint())
	}
}

func TestSchema_WireKeepsDeclarationOrder(t *testing.T) {
	orig := NewBuilder().Boolean("confirm").Text("notes").Integer("party").Text("allergies").MustBuild()
	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	var got []string
	for _, f := range parsed.Fields() {
		got = append(got, f.Name)
	}
	want := []string{"confirm", "notes", "party", "allergies"}
	if !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestSchema_FingerprintTracksDefaults(t *testing.T) {
	a := NewBuilder().Text("notes", Default("")).MustBuild()
	b := NewBuilder().Text("notes", Default("none")).MustBuild()
	if a.Fingerprint() == b.Fingerprint() {
		t.Fatalf("changing a default must change the fingerprint")
	}
}

func TestParseSchema_RoundTrip(t *testing.T) {
	orig := NewBuilder().
		Boolean("confirm", Required(), Title("Confirm"), Description("Confirm the booking")).
		Text("notes", Default("")).
		Integer("party", Minimum(1), Maximum(12), Default(2)).
		Decimal("budget", Minimum(0)).
		Enum("seating", []string{"inside", "patio"}, MinLength(1)).
		MustBuild()

	raw, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseSchema(raw)
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	if parsed.Fingerprint() != orig.Fingerprint() {
		t.Fatalf("fingerprint changed across round trip")
	}
	f, _ := parsed.Field("party")
	if f.Default != int64(2) || *f.Minimum != 1 || *f.Maximum != 12 {
		t.Fatalf("party field not restored: %#v", f)
	}
}

func TestParseSchema_PreservesPropertyOrder(t *testing.T) {
	sch, err := ParseSchema([]byte(`{"type":"object","properties":{"z":{"type":"string"},"a":{"type":"integer"}}}`))
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	fields := sch.Fields()
	if fields[0].Name != "z" || fields[1].Name != "a" {
		t.Fatalf("unexpected order: %v", fields)
	}
}

func TestParseSchema_EnumWithoutType(t *testing.T) {
	sch, err := ParseSchema([]byte(`{"type":"object","properties":{"tier":{"enum":["free","pro"]}}}`))
	if err != nil {
		t.Fatalf("ParseSchema: %v", err)
	}
	f, _ := sch.Field("tier")
	if f.Kind != KindText || len(f.Enum) != 2 {
		t.Fatalf("unexpected field %#v", f)
	}
}

func TestParseSchema_RejectsComposites(t *testing.T) {
	cases := map[string]string{
		"object":     `{"type":"object","properties":{"addr":{"type":"object"}}}`,
		"array":      `{"type":"object","properties":{"tags":{"type":"array","items":{"type":"string"}}}}`,
		"ref":        `{"type":"object","properties":{"x":{"$ref":"#/$defs/x"}}}`,
		"oneOf":      `{"type":"object","properties":{"x":{"oneOf":[{"type":"string"},{"type":"integer"}]}}}`,
		"nested":     `{"type":"object","properties":{"x":{"type":"string","properties":{"y":{"type":"string"}}}}}`,
		"untyped":    `{"type":"object","properties":{"x":{}}}`,
		"null type":  `{"type":"object","properties":{"x":{"type":"null"}}}`,
		"root allOf": `{"type":"object","allOf":[{"type":"object"}],"properties":{"x":{"type":"string"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSchema([]byte(doc))
			if !errors.Is(err, ErrUnsupportedType) {
				t.Fatalf("expected ErrUnsupportedType, got %v", err)
			}
		})
	}
}

func TestParseSchema_Invalid(t *testing.T) {
	cases := map[string]string{
		"not json":           `{`,
		"root not object":    `{"type":"string"}`,
		"no properties":      `{"type":"object","properties":{}}`,
		"unknown required":   `{"type":"object","properties":{"a":{"type":"string"}},"required":["b"]}`,
		"numeric enum":       `{"type":"object","properties":{"a":{"type":"string","enum":[1,2]}}}`,
		"default wrong kind": `{"type":"object","properties":{"a":{"type":"boolean","default":"yes"}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSchema([]byte(doc))
			if !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestSchema_UnmarshalInsideStruct(t *testing.T) {
	var req Request
	doc := `{"requestId":"r1","message":"hi","requestedSchema":{"type":"object","properties":{"ok":{"type":"boolean"}},"required":["ok"]}}`
	if err := json.Unmarshal([]byte(doc), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Schema.Len() != 1 || req.Schema.Required()[0] != "ok" {
		t.Fatalf("schema not decoded: %#v", req.Schema)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindText, KindInteger, KindDecimal, KindBoolean} {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	for _, s := range []string{"object", "array", "null", "", "text"} {
		if _, err := ParseKind(s); !errors.Is(err, ErrUnsupportedType) {
			t.Fatalf("ParseKind(%q) expected ErrUnsupportedType, got %v", s, err)
		}
	}
	if KindText.Label() != "text" || KindDecimal.Label() != "decimal" || KindInteger.Label() != "integer" {
		t.Fatalf("unexpected labels")
	}
}

func TestSchema_NilSafe(t *testing.T) {
	var s *Schema
	if s.Len() != 0 || s.Fields() != nil || s.Fingerprint() != "" {
		t.Fatalf("nil schema accessors should be zero")
	}
	b, _ := s.MarshalJSON()
	if string(b) != "null" {
		t.Fatalf("nil schema should encode as null, got %s", b)
	}
}
