package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with request-scoped groups carried on the
// context. Wrap any slog.Handler with it:
//
//	slog.New(logctx.Handler{Handler: slog.NewTextHandler(os.Stderr, nil)})
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if ed, ok := ctx.Value(elicitDataKey{}).(*ElicitData); ok {
		r.AddAttrs(slog.Group("elicit",
			slog.String("id", ed.RequestID),
			slog.String("source", ed.Source),
		))
	}

	if msg, ok := ctx.Value(rpcMsg{}).(*RPCMessage); ok {
		r.AddAttrs(slog.Group("rpc",
			slog.String("method", msg.Method),
			slog.String("id", msg.ID),
			slog.String("type", msg.Type),
		))
	}

	if wd, ok := ctx.Value(workflowDataKey{}).(*WorkflowData); ok {
		r.AddAttrs(slog.Group("workflow",
			slog.String("id", wd.WorkflowID),
			slog.String("run_id", wd.RunID),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type elicitDataKey struct{}

// ElicitData identifies the elicitation a log record belongs to.
type ElicitData struct {
	RequestID string
	Source    string
}

func WithElicitData(ctx context.Context, data *ElicitData) context.Context {
	return context.WithValue(ctx, elicitDataKey{}, data)
}

type rpcMsg struct{}

type RPCMessage struct {
	Method string
	ID     string
	Type   string
}

func WithRPCMessage(ctx context.Context, msg *RPCMessage) context.Context {
	return context.WithValue(ctx, rpcMsg{}, msg)
}

type workflowDataKey struct{}

type WorkflowData struct {
	WorkflowID string
	RunID      string
}

func WithWorkflowData(ctx context.Context, data *WorkflowData) context.Context {
	return context.WithValue(ctx, workflowDataKey{}, data)
}
