// Package jsonrpc is the JSON-RPC 2.0 envelope used to carry elicitation
// requests between processes.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the only protocol version accepted.
const Version = "2.0"

// Kind classifies a Message.
type Kind uint8

const (
	KindRequest Kind = iota + 1
	KindNotification
	KindResponse
)

// Message is a request, notification or response. Which one it is follows
// from the fields set; see Kind.
type Message struct {
	Version string          `json:"jsonrpc"`
	ID      *ID             `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Kind reports whether m is a request, notification or response.
func (m *Message) Kind() Kind {
	switch {
	case m.Method == "":
		return KindResponse
	case m.ID == nil:
		return KindNotification
	}
	return KindRequest
}

// UnmarshalJSON decodes m and rejects envelopes that are not valid
// JSON-RPC 2.0.
func (m *Message) UnmarshalJSON(data []byte) error {
	type envelope Message
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("jsonrpc: invalid JSON: %w", err)
	}
	if env.Version != Version {
		return fmt.Errorf("jsonrpc: unsupported version %q", env.Version)
	}
	hasResult, hasError := len(env.Result) > 0, env.Error != nil
	switch {
	case env.Method != "" && (hasResult || hasError):
		return errors.New("jsonrpc: request carries a result or error")
	case env.Method == "" && hasResult == hasError:
		return errors.New("jsonrpc: response needs exactly one of result or error")
	}
	*m = Message(env)
	return nil
}

func marshalRaw(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonrpc: marshal: %w", err)
	}
	return b, nil
}

// NewRequest builds a request with the given id.
func NewRequest(id *ID, method string, params any) (*Message, error) {
	raw, err := marshalRaw(params)
	if err != nil {
		return nil, err
	}
	return &Message{Version: Version, ID: id, Method: method, Params: raw}, nil
}

// NewNotification builds a request without an id.
func NewNotification(method string, params any) (*Message, error) {
	return NewRequest(nil, method, params)
}

// NewResult builds a successful response.
func NewResult(id *ID, result any) (*Message, error) {
	raw, err := marshalRaw(result)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		raw = json.RawMessage("null")
	}
	return &Message{Version: Version, ID: responseID(id), Result: raw}, nil
}

// NewError builds an error response. A nil id is sent as null.
func NewError(id *ID, code ErrorCode, message string) *Message {
	return &Message{Version: Version, ID: responseID(id), Error: &Error{Code: code, Message: message}}
}

// ErrorFor builds an error response from err, keeping the code of a *Error
// and reporting anything else as an internal error.
func ErrorFor(id *ID, err error) *Message {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return NewError(id, rpcErr.Code, rpcErr.Message)
	}
	return NewError(id, ErrorCodeInternalError, err.Error())
}

// Responses always carry an id, null when the request's id was unknown.
func responseID(id *ID) *ID {
	if id == nil {
		return &ID{}
	}
	return id
}
