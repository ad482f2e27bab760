package remote

import (
	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/jsonrpc"
)

// Method names used on the wire.
const (
	MethodElicitationCreate = jsonrpc.MethodElicitationCreate
	MethodCancelled         = jsonrpc.MethodCancelled
)

// CreateParams are the params of an elicitation/create request.
type CreateParams = jsonrpc.CreateParams

// CancelledParams are the params of a notifications/cancelled notification.
// RequestID is the JSON-RPC id of the abandoned request.
type CancelledParams = jsonrpc.CancelledParams

// CreateResult is the result of an elicitation/create request.
type CreateResult = elicitation.Response
