package elicitation

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedType indicates a field whose kind is not one of the four
	// primitive kinds (for example an object or array).
	ErrUnsupportedType = errors.New("elicitation: unsupported field type")
	// ErrInvalidSchema indicates a structurally invalid schema (no fields,
	// duplicate names, contradictory constraints, bad defaults).
	ErrInvalidSchema = errors.New("elicitation: invalid schema")
	// ErrNoCallback is returned by NewRequester when no callback is supplied.
	ErrNoCallback = errors.New("elicitation: no callback configured")
	// ErrNilResult indicates a callback returned neither a result nor an error.
	ErrNilResult = errors.New("elicitation: callback returned nil result")
	// ErrTimeout is returned when a host timeout expires and the requester is
	// configured with TimeoutError.
	ErrTimeout = errors.New("elicitation: timed out waiting for a response")
)

// SchemaError describes why a schema was rejected. It always wraps either
// ErrUnsupportedType or ErrInvalidSchema.
type SchemaError struct {
	Field  string
	Detail string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Detail)
	}
	return fmt.Sprintf("%v: field %q: %s", e.Err, e.Field, e.Detail)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func unsupported(field, format string, args ...any) error {
	return &SchemaError{Field: field, Detail: fmt.Sprintf(format, args...), Err: ErrUnsupportedType}
}

func invalid(field, format string, args ...any) error {
	return &SchemaError{Field: field, Detail: fmt.Sprintf(format, args...), Err: ErrInvalidSchema}
}

// ValidationError reports accepted data that does not conform to its schema.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("elicitation: field %q %s", e.Field, e.Reason)
}
