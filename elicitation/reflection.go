package elicitation

import (
	"reflect"
	"strings"
	"sync"

	js "github.com/invopop/jsonschema"
)

var reflectCache sync.Map // reflect.Type -> reflected

type reflected struct {
	schema *Schema
	err    error
}

// SchemaOf derives a Schema from the flat struct type T.
//
// Exported fields become properties named by their json tag. Value fields are
// required unless tagged omitempty; pointer fields are always optional. The
// jsonschema tag supplies title, description, default, enum (repeat
// enum=value per value), minLength, maxLength, minimum and maximum:
//
//	type Booking struct {
//	    Confirm bool   `json:"confirm" jsonschema:"description=Confirm the booking"`
//	    Notes   string `json:"notes,omitempty" jsonschema:"default="`
//	}
//
// Fields of struct, slice, map or interface type fail with ErrUnsupportedType.
// Results are cached per type.
func SchemaOf[T any]() (*Schema, error) {
	return schemaForType(reflect.TypeFor[T]())
}

// SchemaFor is SchemaOf for a value whose type is only known at run time.
// v may be a struct or a pointer to one.
func SchemaFor(v any) (*Schema, error) {
	if v == nil {
		return nil, invalid("", "cannot derive a schema from nil")
	}
	return schemaForType(reflect.TypeOf(v))
}

// MustSchemaOf is like SchemaOf but panics on error.
func MustSchemaOf[T any]() *Schema {
	s, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func schemaForType(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, invalid("", "type %s is not a struct", t)
	}
	if v, ok := reflectCache.Load(t); ok {
		r := v.(*reflected)
		return r.schema, r.err
	}
	s, err := project(t)
	actual, _ := reflectCache.LoadOrStore(t, &reflected{schema: s, err: err})
	r := actual.(*reflected)
	return r.schema, r.err
}

func project(t reflect.Type) (*Schema, error) {
	pointers := map[string]bool{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "-" {
			continue
		}
		pointers[name] = f.Type.Kind() == reflect.Pointer
	}

	r := &js.Reflector{DoNotReference: true, ExpandedStruct: true}
	root := r.ReflectFromType(t)
	if root == nil {
		return nil, invalid("", "type %s produced no schema", t)
	}
	return fromJSONSchema(root, func(name string) bool { return pointers[name] })
}

func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
