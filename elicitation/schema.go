package elicitation

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	js "github.com/invopop/jsonschema"
)

// Kind is the primitive type of a field. Its value is the JSON Schema type
// keyword used on the wire.
type Kind string

const (
	KindText    Kind = "string"
	KindInteger Kind = "integer"
	KindDecimal Kind = "number"
	KindBoolean Kind = "boolean"
)

// ParseKind maps a JSON Schema type keyword to a Kind. Composite keywords
// ("object", "array") and anything unknown fail with ErrUnsupportedType.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindText, KindInteger, KindDecimal, KindBoolean:
		return k, nil
	}
	return "", unsupported("", "type %q is not a primitive kind", s)
}

// Valid reports whether k is one of the four primitive kinds.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// Label is the human name of the kind ("text", "integer", "decimal", "boolean").
func (k Kind) Label() string {
	switch k {
	case KindText:
		return "text"
	case KindDecimal:
		return "decimal"
	}
	return string(k)
}

// Field declares one named input. A nil Default means the field has no default.
type Field struct {
	Name        string
	Kind        Kind
	Title       string
	Description string
	Default     any
	Required    bool
	Enum        []string
	MinLength   *int
	MaxLength   *int
	Minimum     *float64
	Maximum     *float64
}

// HasDefault reports whether a default value is declared.
func (f Field) HasDefault() bool { return f.Default != nil }

// Schema is an immutable, validated flat object schema. The zero value has no
// fields and is rejected by the Requester.
type Schema struct {
	fields      []Field
	index       map[string]int
	encoded     []byte
	fingerprint string
}

// NewSchema validates fields and returns a schema. Fields keep their
// declaration order, which the wire encoding preserves for presentation. The
// fingerprint is computed over a name-sorted encoding and so ignores order.
func NewSchema(fields ...Field) (*Schema, error) {
	if len(fields) == 0 {
		return nil, invalid("", "schema declares no fields")
	}
	s := &Schema{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		nf, err := normalizeField(f)
		if err != nil {
			return nil, err
		}
		if _, dup := s.index[nf.Name]; dup {
			return nil, invalid(nf.Name, "declared more than once")
		}
		s.index[nf.Name] = len(s.fields)
		s.fields = append(s.fields, nf)
	}
	encoded, err := json.Marshal(s.wire(false))
	if err != nil {
		return nil, fmt.Errorf("elicitation: encode schema: %w", err)
	}
	canonical, err := json.Marshal(s.wire(true))
	if err != nil {
		return nil, fmt.Errorf("elicitation: encode schema: %w", err)
	}
	s.encoded = encoded
	sum := sha256.Sum256(canonical)
	s.fingerprint = hex.EncodeToString(sum[:])
	return s, nil
}

func normalizeField(f Field) (Field, error) {
	name := f.Name
	if strings.TrimSpace(name) == "" {
		return Field{}, invalid("", "empty field name")
	}
	if !f.Kind.Valid() {
		return Field{}, unsupported(name, "type %q is not a primitive kind", f.Kind)
	}
	f.Enum = slices.Clone(f.Enum)
	if len(f.Enum) > 0 {
		if f.Kind != KindText {
			return Field{}, invalid(name, "enum is only allowed on text fields")
		}
		seen := make(map[string]struct{}, len(f.Enum))
		for _, v := range f.Enum {
			if _, dup := seen[v]; dup {
				return Field{}, invalid(name, "duplicate enum value %q", v)
			}
			seen[v] = struct{}{}
		}
	}
	if f.MinLength != nil || f.MaxLength != nil {
		if f.Kind != KindText {
			return Field{}, invalid(name, "length constraints are only allowed on text fields")
		}
		if (f.MinLength != nil && *f.MinLength < 0) || (f.MaxLength != nil && *f.MaxLength < 0) {
			return Field{}, invalid(name, "negative length constraint")
		}
		if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
			return Field{}, invalid(name, "minLength greater than maxLength")
		}
		f.MinLength = clonePtr(f.MinLength)
		f.MaxLength = clonePtr(f.MaxLength)
	}
	if f.Minimum != nil || f.Maximum != nil {
		if f.Kind != KindInteger && f.Kind != KindDecimal {
			return Field{}, invalid(name, "range constraints are only allowed on numeric fields")
		}
		if f.Minimum != nil && f.Maximum != nil && *f.Minimum > *f.Maximum {
			return Field{}, invalid(name, "minimum greater than maximum")
		}
		f.Minimum = clonePtr(f.Minimum)
		f.Maximum = clonePtr(f.Maximum)
	}
	if f.Default != nil {
		v, err := coerce(f, f.Default)
		if err != nil {
			return Field{}, invalid(name, "default %v: %s", f.Default, err.Reason)
		}
		f.Default = v
	}
	return f, nil
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.fields)
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []Field {
	if s == nil {
		return nil
	}
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		f.Enum = slices.Clone(f.Enum)
		out[i] = f
	}
	return out
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	f := s.fields[i]
	f.Enum = slices.Clone(f.Enum)
	return f, true
}

// Required returns the names of required fields in declaration order.
func (s *Schema) Required() []string {
	if s == nil {
		return nil
	}
	var out []string
	for _, f := range s.fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Fingerprint is the hex SHA-256 of the name-sorted encoding. Any semantic
// change, including a changed default, yields a different fingerprint;
// reordering fields does not.
func (s *Schema) Fingerprint() string {
	if s == nil {
		return ""
	}
	return s.fingerprint
}

// MarshalJSON returns the wire form: properties in declaration order and
// the required list sorted.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.encoded) == 0 {
		return []byte("null"), nil
	}
	return bytes.Clone(s.encoded), nil
}

// UnmarshalJSON parses a wire schema, applying the same checks as ParseSchema.
func (s *Schema) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSchema(data)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

type wireProperty struct {
	Type        Kind     `json:"type"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	MinLength   *int     `json:"minLength,omitempty"`
	MaxLength   *int     `json:"maxLength,omitempty"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

type wireSchema struct {
	Type       string         `json:"type"`
	Properties wireProperties `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

type namedProperty struct {
	name string
	prop wireProperty
}

// wireProperties encodes as a JSON object whose keys follow slice order.
type wireProperties []namedProperty

func (p wireProperties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, np := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(np.name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(np.prop)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// wire builds the encoded form, with properties sorted by name when sorted
// is set and in declaration order otherwise.
func (s *Schema) wire(sorted bool) wireSchema {
	w := wireSchema{Type: "object", Properties: make(wireProperties, 0, len(s.fields))}
	for _, f := range s.fields {
		w.Properties = append(w.Properties, namedProperty{name: f.Name, prop: wireProperty{
			Type:        f.Kind,
			Title:       f.Title,
			Description: f.Description,
			Default:     f.Default,
			Enum:        f.Enum,
			MinLength:   f.MinLength,
			MaxLength:   f.MaxLength,
			Minimum:     f.Minimum,
			Maximum:     f.Maximum,
		}})
		if f.Required {
			w.Required = append(w.Required, f.Name)
		}
	}
	if sorted {
		slices.SortFunc(w.Properties, func(a, b namedProperty) int { return strings.Compare(a.name, b.name) })
	}
	slices.Sort(w.Required)
	return w
}

// ParseSchema parses the wire form of a schema. Properties that use
// composite types or composition keywords fail with ErrUnsupportedType.
func ParseSchema(data []byte) (*Schema, error) {
	var root js.Schema
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, invalid("", "decode: %v", err)
	}
	return fromJSONSchema(&root, nil)
}

// fromJSONSchema converts an object schema into a Schema. optional, when set,
// reports fields that must be optional regardless of the required list.
func fromJSONSchema(root *js.Schema, optional func(name string) bool) (*Schema, error) {
	if root.Type != "object" {
		return nil, invalid("", "root type must be object, got %q", root.Type)
	}
	if root.Ref != "" || len(root.AllOf) > 0 || len(root.AnyOf) > 0 || len(root.OneOf) > 0 || root.Not != nil {
		return nil, unsupported("", "schema composition is not supported")
	}
	if root.Properties == nil || root.Properties.Len() == 0 {
		return nil, invalid("", "schema declares no fields")
	}
	required := make(map[string]bool, len(root.Required))
	for _, name := range root.Required {
		if _, ok := root.Properties.Get(name); !ok {
			return nil, invalid(name, "required but not declared")
		}
		required[name] = true
	}

	fields := make([]Field, 0, root.Properties.Len())
	for el := root.Properties.Oldest(); el != nil; el = el.Next() {
		f, err := fieldFromProperty(el.Key, el.Value)
		if err != nil {
			return nil, err
		}
		f.Required = required[el.Key] && (optional == nil || !optional(el.Key))
		fields = append(fields, f)
	}
	return NewSchema(fields...)
}

func fieldFromProperty(name string, p *js.Schema) (Field, error) {
	if p == nil {
		return Field{}, invalid(name, "missing property schema")
	}
	switch {
	case p.Type == "object" || p.Type == "array":
		return Field{}, unsupported(name, "type %q is not a primitive kind", p.Type)
	case p.Ref != "" || len(p.AllOf) > 0 || len(p.AnyOf) > 0 || len(p.OneOf) > 0 || p.Not != nil:
		return Field{}, unsupported(name, "schema composition is not supported")
	case p.Items != nil || len(p.PrefixItems) > 0 || p.Properties != nil || p.AdditionalProperties != nil || len(p.PatternProperties) > 0:
		return Field{}, unsupported(name, "nested or collection keywords are not supported")
	}

	typ := p.Type
	if typ == "" && len(p.Enum) > 0 {
		typ = string(KindText)
	}
	kind, err := ParseKind(typ)
	if err != nil {
		return Field{}, unsupported(name, "type %q is not a primitive kind", typ)
	}

	f := Field{
		Name:        name,
		Kind:        kind,
		Title:       p.Title,
		Description: p.Description,
		Default:     p.Default,
	}
	for _, ev := range p.Enum {
		sv, ok := ev.(string)
		if !ok {
			return Field{}, invalid(name, "enum values must be strings")
		}
		f.Enum = append(f.Enum, sv)
	}
	if p.MinLength != nil {
		n := int(*p.MinLength)
		f.MinLength = &n
	}
	if p.MaxLength != nil {
		n := int(*p.MaxLength)
		f.MaxLength = &n
	}
	if p.Minimum != "" {
		v, err := strconv.ParseFloat(string(p.Minimum), 64)
		if err != nil {
			return Field{}, invalid(name, "minimum: %v", err)
		}
		f.Minimum = &v
	}
	if p.Maximum != "" {
		v, err := strconv.ParseFloat(string(p.Maximum), 64)
		if err != nil {
			return Field{}, invalid(name, "maximum: %v", err)
		}
		f.Maximum = &v
	}
	return f, nil
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
