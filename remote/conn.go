package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ggoodman/elicit/internal/jsonrpc"
)

// Option configures a Client or Serve.
type Option func(*options)

type options struct {
	log *slog.Logger
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: slog.Default()}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// writer serializes newline-delimited JSON-RPC messages onto a stream.
type writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newWriter(w io.Writer) *writer {
	return &writer{enc: json.NewEncoder(w)}
}

func (w *writer) write(msg any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(msg); err != nil {
		return fmt.Errorf("remote: write message: %w", err)
	}
	return nil
}

func (w *writer) SendRequest(ctx context.Context, req *jsonrpc.Message) error {
	return w.write(req)
}

func (w *writer) SendCancelled(ctx context.Context, requestID string) error {
	n, err := jsonrpc.NewNotification(MethodCancelled, CancelledParams{RequestID: requestID, Reason: "request abandoned"})
	if err != nil {
		return err
	}
	return w.write(n)
}

// readMessages decodes messages from r until it fails, calling handle for
// each valid one and bad for each undecodable one.
func readMessages(r io.Reader, handle func(*jsonrpc.Message), bad func(error)) error {
	dec := json.NewDecoder(r)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var msg jsonrpc.Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			bad(err)
			continue
		}
		handle(&msg)
	}
}
