package jsonrpc

import "fmt"

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	ErrorCodeParseError     ErrorCode = -32700
	ErrorCodeMethodNotFound ErrorCode = -32601
	ErrorCodeInvalidParams  ErrorCode = -32602
	ErrorCodeInternalError  ErrorCode = -32603
)

// Error is a JSON-RPC error object. It is also a Go error so a peer's
// rejection can be wrapped and matched with errors.As.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func invalidParams(format string, args ...any) *Error {
	return &Error{Code: ErrorCodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}
