package elicitation

import (
	"errors"
	"sync"
)

// Builder constructs a Schema programmatically:
//
//	s, err := NewBuilder().
//	    Boolean("confirm", Required(), Description("Confirm the booking")).
//	    Text("notes", Default("")).
//	    Build()
//
// Fields are optional unless Required is given. Errors are collected and
// reported by Build. A Builder may only be built once.
type Builder struct {
	mu     sync.Mutex
	fields []Field
	built  bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// FieldOption mutates a field declaration.
type FieldOption func(*Field)

// Text adds a text field.
func (b *Builder) Text(name string, opts ...FieldOption) *Builder {
	return b.Add(name, KindText, opts...)
}

// Integer adds an integer field.
func (b *Builder) Integer(name string, opts ...FieldOption) *Builder {
	return b.Add(name, KindInteger, opts...)
}

// Decimal adds a decimal field.
func (b *Builder) Decimal(name string, opts ...FieldOption) *Builder {
	return b.Add(name, KindDecimal, opts...)
}

// Boolean adds a boolean field.
func (b *Builder) Boolean(name string, opts ...FieldOption) *Builder {
	return b.Add(name, KindBoolean, opts...)
}

// Enum adds a text field restricted to values.
func (b *Builder) Enum(name string, values []string, opts ...FieldOption) *Builder {
	return b.Add(name, KindText, append([]FieldOption{func(f *Field) { f.Enum = append([]string(nil), values...) }}, opts...)...)
}

// Add adds a field of an arbitrary kind. Kinds outside the four primitives
// make Build fail with ErrUnsupportedType.
func (b *Builder) Add(name string, kind Kind, opts ...FieldOption) *Builder {
	f := Field{Name: name, Kind: kind}
	for _, o := range opts {
		if o != nil {
			o(&f)
		}
	}
	b.mu.Lock()
	b.fields = append(b.fields, f)
	b.mu.Unlock()
	return b
}

// Required marks the field required.
func Required() FieldOption { return func(f *Field) { f.Required = true } }

// Optional marks the field optional (the default).
func Optional() FieldOption { return func(f *Field) { f.Required = false } }

// Title sets a short display label.
func Title(t string) FieldOption { return func(f *Field) { f.Title = t } }

// Description sets help text shown with the prompt.
func Description(d string) FieldOption { return func(f *Field) { f.Description = d } }

// Default sets the value used when the user leaves the field empty.
func Default(v any) FieldOption { return func(f *Field) { f.Default = v } }

// MinLength sets the minimum text length in characters.
func MinLength(n int) FieldOption { return func(f *Field) { f.MinLength = &n } }

// MaxLength sets the maximum text length in characters.
func MaxLength(n int) FieldOption { return func(f *Field) { f.MaxLength = &n } }

// Minimum sets the inclusive numeric minimum.
func Minimum(v float64) FieldOption { return func(f *Field) { f.Minimum = &v } }

// Maximum sets the inclusive numeric maximum.
func Maximum(v float64) FieldOption { return func(f *Field) { f.Maximum = &v } }

// Build validates the declared fields and returns the schema.
func (b *Builder) Build() (*Schema, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		return nil, errors.New("elicitation: builder reused after Build")
	}
	b.built = true
	return NewSchema(b.fields...)
}

// MustBuild is like Build but panics on error. Use it for schemas declared at
// package level.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}
