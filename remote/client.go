// Package remote carries elicitation requests over a newline-delimited
// JSON-RPC 2.0 stream.
//
// Client is an elicitation.Callback that forwards each request to a peer as
// an elicitation/create call. Serve is the peer: it decodes those calls and
// answers them with a local Callback. Abandoned requests are signalled in
// either direction with notifications/cancelled.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/jsonrpc"
	"github.com/ggoodman/elicit/internal/logctx"
	"github.com/ggoodman/elicit/internal/outbound"
)

// ErrInvalidAnswer indicates the peer accepted with content that does not
// match the requested schema.
var ErrInvalidAnswer = errors.New("remote: answer does not match schema")

// Client forwards elicitation requests to a peer.
type Client struct {
	log *slog.Logger
	w   *writer
	d   *outbound.Dispatcher

	done chan struct{}
	once sync.Once
}

var _ elicitation.Callback = (*Client)(nil)

// NewClient starts reading responses from r and returns a Client that writes
// requests to w. The client stops when r fails or Close is called.
func NewClient(r io.Reader, w io.Writer, opts ...Option) *Client {
	o := buildOptions(opts)
	c := &Client{
		log:  o.log,
		w:    newWriter(w),
		done: make(chan struct{}),
	}
	c.d = outbound.New(c.w)
	go c.readLoop(r)
	return c
}

func (c *Client) readLoop(r io.Reader) {
	err := readMessages(r, c.handle, func(err error) {
		c.log.Warn("remote.client.decode.err", slog.String("err", err.Error()))
	})
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	c.shutdown(fmt.Errorf("remote: connection lost: %w", err))
}

func (c *Client) handle(msg *jsonrpc.Message) {
	switch msg.Kind() {
	case jsonrpc.KindResponse:
		c.d.OnResponse(msg)
	case jsonrpc.KindNotification:
		if msg.Method != MethodCancelled {
			return
		}
		p, err := msg.CancelledParams()
		if err != nil {
			c.log.Warn("remote.client.cancelled.err", slog.String("err", err.Error()))
			return
		}
		c.d.OnCancelled(p.RequestID)
	case jsonrpc.KindRequest:
		_ = c.w.write(jsonrpc.NewError(msg.ID, jsonrpc.ErrorCodeMethodNotFound, "method not supported by elicitation client"))
	}
}

func (c *Client) shutdown(err error) {
	c.once.Do(func() {
		c.d.Close(err)
		close(c.done)
	})
}

// Close fails pending requests and stops accepting new ones. It does not
// close the underlying streams.
func (c *Client) Close() error {
	c.shutdown(outbound.ErrDispatcherClosed)
	return nil
}

// Done is closed once the client has stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

// Elicit sends req to the peer and maps its answer onto a Result. Unknown
// actions and peer-side cancellation become Cancelled; so does ctx ending,
// after the peer is told to abandon the request.
func (c *Client) Elicit(ctx context.Context, req *elicitation.Request) (elicitation.Result, error) {
	params := CreateParams{
		Message:         req.Message,
		RequestedSchema: req.Schema,
		Source:          req.Source,
		RequestID:       req.ID,
	}
	ctx = logctx.WithRPCMessage(ctx, &logctx.RPCMessage{Method: MethodElicitationCreate, Type: "request"})

	resp, err := c.d.Call(ctx, MethodElicitationCreate, params)
	switch {
	case err == nil:
	case ctx.Err() != nil, errors.Is(err, outbound.ErrRemoteCancelled):
		c.log.InfoContext(ctx, "remote.elicit.cancelled")
		return elicitation.Cancelled{}, nil
	default:
		return nil, err
	}
	result, err := resp.CreateResult()
	if err != nil {
		var rpcErr *jsonrpc.Error
		if errors.As(err, &rpcErr) {
			return nil, fmt.Errorf("remote: peer rejected request: %w", err)
		}
		return nil, fmt.Errorf("remote: %w", err)
	}
	if _, ok := elicitation.ParseAction(string(result.Action)); !ok {
		c.log.WarnContext(ctx, "remote.elicit.unknown_action", slog.String("action", string(result.Action)))
	}
	res := elicitation.ResultOf(result)
	if a, ok := res.(elicitation.Accepted); ok {
		if err := validateContent(req.Schema, a.Data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
	}
	return res, nil
}
