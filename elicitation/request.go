package elicitation

import "context"

// Request is what a Callback is asked to present.
type Request struct {
	// ID correlates the request across transports and replays.
	ID string `json:"requestId"`
	// Source identifies the tool or server asking.
	Source  string  `json:"source,omitempty"`
	Message string  `json:"message"`
	Schema  *Schema `json:"requestedSchema"`
}

// Callback presents a request to a user and collects the answer. It is
// supplied once by the hosting application and must be safe for concurrent
// use. Implementations should return promptly once ctx is done; the Requester
// stops waiting either way.
type Callback interface {
	Elicit(ctx context.Context, req *Request) (Result, error)
}

// CallbackFunc adapts a function to the Callback interface.
type CallbackFunc func(ctx context.Context, req *Request) (Result, error)

func (f CallbackFunc) Elicit(ctx context.Context, req *Request) (Result, error) {
	return f(ctx, req)
}
