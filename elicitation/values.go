package elicitation

import (
	"encoding/json"
	"math"
	"slices"
)

// ValidateOption tunes Validate.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	strict bool
}

// RejectUnknownKeys makes Validate fail on keys the schema does not declare.
// Without it unknown keys are dropped.
func RejectUnknownKeys() ValidateOption {
	return func(c *validateConfig) { c.strict = true }
}

// Validate checks data against schema and returns a normalized copy: defaults
// are applied to absent fields, explicit nulls count as absent and values are
// coerced to their kind's Go type (string, int64, float64, bool). The input
// map is not modified.
func Validate(schema *Schema, data map[string]any, opts ...ValidateOption) (map[string]any, error) {
	if schema.Len() == 0 {
		return nil, invalid("", "schema declares no fields")
	}
	var cfg validateConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.strict {
		for k := range data {
			if _, ok := schema.index[k]; !ok {
				return nil, &ValidationError{Field: k, Reason: "is not declared in the schema"}
			}
		}
	}

	out := make(map[string]any, len(schema.fields))
	for _, f := range schema.fields {
		raw, present := data[f.Name]
		if present && raw == nil {
			present = false
		}
		if !present {
			if f.Default != nil {
				out[f.Name] = f.Default
				continue
			}
			if f.Required {
				return nil, &ValidationError{Field: f.Name, Reason: "is required"}
			}
			continue
		}
		v, err := coerce(f, raw)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

// Check coerces a single value to the field's kind and enforces its enum,
// length and range constraints.
func (f Field) Check(v any) (any, error) {
	out, err := coerce(f, v)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func coerce(f Field, raw any) (any, *ValidationError) {
	fail := func(reason string) *ValidationError { return &ValidationError{Field: f.Name, Reason: reason} }

	switch f.Kind {
	case KindText:
		s, ok := raw.(string)
		if !ok {
			return nil, fail("must be text")
		}
		if len(f.Enum) > 0 && !slices.Contains(f.Enum, s) {
			return nil, fail("must be one of the allowed values")
		}
		if f.MinLength != nil && runeLen(s) < *f.MinLength {
			return nil, fail("is shorter than the minimum length")
		}
		if f.MaxLength != nil && runeLen(s) > *f.MaxLength {
			return nil, fail("is longer than the maximum length")
		}
		return s, nil

	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fail("must be a boolean")
		}
		return b, nil

	case KindInteger:
		i, ok := toInt(raw)
		if !ok {
			return nil, fail("must be an integer")
		}
		if err := checkRange(f, float64(i)); err != nil {
			return nil, err
		}
		return i, nil

	case KindDecimal:
		n, ok := toFloat(raw)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fail("must be a number")
		}
		if err := checkRange(f, n); err != nil {
			return nil, err
		}
		return n, nil
	}
	return nil, fail("has an unsupported type")
}

func checkRange(f Field, n float64) *ValidationError {
	if f.Minimum != nil && n < *f.Minimum {
		return &ValidationError{Field: f.Name, Reason: "is below the minimum"}
	}
	if f.Maximum != nil && n > *f.Maximum {
		return &ValidationError{Field: f.Name, Reason: "is above the maximum"}
	}
	return nil
}

// toInt accepts integer types, integral floats and json.Number values that
// fit in an int64.
func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	f, ok := toFloat(v)
	// 2^63 is not representable as an int64; float64(math.MaxInt64) rounds to it.
	if !ok || f != math.Trunc(f) || f >= 0x1p63 || f < -0x1p63 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
