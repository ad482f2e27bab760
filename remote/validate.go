package remote

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ggoodman/elicit/elicitation"
)

// compiled caches compiled validators by schema fingerprint.
var compiled sync.Map // fingerprint -> *jsonschema.Schema

func compile(s *elicitation.Schema) (*jsonschema.Schema, error) {
	if v, ok := compiled.Load(s.Fingerprint()); ok {
		return v.(*jsonschema.Schema), nil
	}
	raw, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	actual, _ := compiled.LoadOrStore(s.Fingerprint(), sch)
	return actual.(*jsonschema.Schema), nil
}

// validateContent checks accepted content against the requested schema as
// a plain JSON Schema validator would see it. Nulls count as absent and
// declared defaults fill absent fields first.
func validateContent(s *elicitation.Schema, content map[string]any) error {
	sch, err := compile(s)
	if err != nil {
		return err
	}
	doc := make(map[string]any, len(content))
	for k, v := range content {
		if v != nil {
			doc[k] = v
		}
	}
	for _, f := range s.Fields() {
		if _, ok := doc[f.Name]; !ok && f.HasDefault() {
			doc[f.Name] = f.Default
		}
	}
	return sch.Validate(doc)
}
