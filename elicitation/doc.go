// Package elicitation lets a tool pause mid-execution and ask a human for
// structured input. The tool declares a flat schema of primitive fields, the
// Requester hands it to an injected Callback, and the tool receives exactly one
// Result: Accepted (with data), Declined or Cancelled.
//
// Schemas
//
// A Schema is a flat object of named fields. Each field has exactly one of
// four primitive kinds:
//
//	KindText     "string"
//	KindInteger  "integer"
//	KindDecimal  "number"
//	KindBoolean  "boolean"
//
// plus an optional title, description, default, string enum and length or
// range constraints. Nested objects, arrays and schema composition are
// rejected when the schema is constructed, never deferred to the moment the
// user answers. Schemas are authored three ways:
//
//	NewSchema(fields...)   explicit Field values
//	NewBuilder()...Build() fluent builder
//	SchemaOf[T]()          reflection over a flat struct (json + jsonschema tags)
//
// and can be parsed from their wire form with ParseSchema. The wire form is a
// JSON object schema listing properties in declaration order, which is the
// order answers are asked in. Fingerprint is a SHA-256 over a name-sorted
// encoding, so it is stable across field order and suitable for caching
// answers.
//
// Results
//
// Result is a closed sum type. Use Match (or a type switch) to branch:
//
//	msg := elicitation.Match(res,
//	    func(a elicitation.Accepted) string { return "ok" },
//	    func() string { return "declined" },
//	    func() string { return "cancelled" },
//	)
//
// Cancellation and timeouts are outcomes, not errors: when the caller's context
// is cancelled while the user is being asked, the request resolves as
// Cancelled. A host-imposed timeout (WithTimeout) resolves as Cancelled or as
// ErrTimeout depending on WithTimeoutPolicy.
//
// Replay
//
// The Requester holds only immutable configuration. Its single side effect is
// the callback invocation, so hosts that replay code (durable workflow engines)
// can supply a stable request id via WithRequestID and serve cached answers
// from a Callback decorator.
package elicitation
