package jsonrpc

import (
	"encoding/json"
	"fmt"

	"github.com/ggoodman/elicit/elicitation"
)

// Methods carried on an elicitation stream.
const (
	MethodElicitationCreate = "elicitation/create"
	MethodCancelled         = "notifications/cancelled"
)

// CreateParams are the params of an elicitation/create request.
type CreateParams struct {
	Message         string              `json:"message"`
	RequestedSchema *elicitation.Schema `json:"requestedSchema"`
	Source          string              `json:"source,omitempty"`
	RequestID       string              `json:"requestId,omitempty"`
}

// Request converts the params to the request handed to a callback.
func (p *CreateParams) Request() *elicitation.Request {
	return &elicitation.Request{ID: p.RequestID, Source: p.Source, Message: p.Message, Schema: p.RequestedSchema}
}

// CancelledParams are the params of notifications/cancelled. RequestID is
// the JSON-RPC id of the abandoned request, as rendered by ID.String.
type CancelledParams struct {
	RequestID string `json:"requestId"`
	Reason    string `json:"reason,omitempty"`
}

// CreateParams decodes the params of an elicitation/create request. Schemas
// outside the flat primitive subset and a missing schema are reported as
// an invalid-params *Error.
func (m *Message) CreateParams() (*CreateParams, error) {
	if m.Method != MethodElicitationCreate {
		return nil, fmt.Errorf("jsonrpc: %s is not %s", m.Method, MethodElicitationCreate)
	}
	var p CreateParams
	if err := json.Unmarshal(m.Params, &p); err != nil {
		return nil, invalidParams("%v", err)
	}
	if p.RequestedSchema == nil {
		return nil, invalidParams("requestedSchema is required")
	}
	return &p, nil
}

// CancelledParams decodes the params of a notifications/cancelled
// notification.
func (m *Message) CancelledParams() (*CancelledParams, error) {
	if m.Method != MethodCancelled {
		return nil, fmt.Errorf("jsonrpc: %s is not %s", m.Method, MethodCancelled)
	}
	var p CancelledParams
	if err := json.Unmarshal(m.Params, &p); err != nil {
		return nil, invalidParams("%v", err)
	}
	return &p, nil
}

// CreateResult decodes the result of an elicitation/create response. A
// peer's error response is returned as its *Error.
func (m *Message) CreateResult() (elicitation.Response, error) {
	if m.Error != nil {
		return elicitation.Response{}, m.Error
	}
	var resp elicitation.Response
	if err := json.Unmarshal(m.Result, &resp); err != nil {
		return elicitation.Response{}, fmt.Errorf("jsonrpc: decode result: %w", err)
	}
	return resp, nil
}
