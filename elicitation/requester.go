package elicitation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ggoodman/elicit/internal/logctx"
)

const tracerName = "github.com/ggoodman/elicit/elicitation"

// TimeoutPolicy selects how an expired host timeout is reported.
type TimeoutPolicy int

const (
	// TimeoutCancel resolves an expired wait as Cancelled.
	TimeoutCancel TimeoutPolicy = iota
	// TimeoutError fails an expired wait with ErrTimeout.
	TimeoutError
)

// Requester issues elicitation requests through a single Callback. It holds
// only immutable configuration and is safe for concurrent use.
type Requester struct {
	cb      Callback
	log     *slog.Logger
	timeout time.Duration
	policy  TimeoutPolicy
	tracer  trace.Tracer
}

// Option configures a Requester.
type Option func(*Requester)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Requester) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTimeout bounds every wait for an answer. Zero means no host timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Requester) { r.timeout = d }
}

// WithTimeoutPolicy selects how expired timeouts, including deadlines on the
// caller's context, are reported.
func WithTimeoutPolicy(p TimeoutPolicy) Option {
	return func(r *Requester) { r.policy = p }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Requester) {
		if tp != nil {
			r.tracer = tp.Tracer(tracerName)
		}
	}
}

// NewRequester returns a Requester bound to cb.
func NewRequester(cb Callback, opts ...Option) (*Requester, error) {
	if cb == nil {
		return nil, ErrNoCallback
	}
	r := &Requester{
		cb:     cb,
		log:    slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, o := range opts {
		if o != nil {
			o(r)
		}
	}
	return r, nil
}

// ElicitOption tunes a single Elicit call.
type ElicitOption func(*elicitConfig)

type elicitConfig struct {
	id     string
	strict bool
}

// WithRequestID fixes the request id instead of generating one. Hosts that
// replay code use it to make repeated calls refer to the same request.
func WithRequestID(id string) ElicitOption {
	return func(c *elicitConfig) { c.id = id }
}

// WithStrictKeys rejects accepted data containing keys the schema does not
// declare.
func WithStrictKeys() ElicitOption {
	return func(c *elicitConfig) { c.strict = true }
}

type outcome struct {
	res Result
	err error
}

// Elicit asks the user for input matching schema and blocks until exactly one
// Result is determined. The callback is invoked at most once, and never when
// the schema is invalid.
//
// Errors are reserved for failures: an invalid schema (*SchemaError), a
// callback failure, a nil result, accepted data that does not validate
// (*ValidationError) and, under TimeoutError, ErrTimeout. Declining and
// cancelling are results.
func (r *Requester) Elicit(ctx context.Context, source, message string, schema *Schema, opts ...ElicitOption) (Result, error) {
	if schema.Len() == 0 {
		return nil, invalid("", "schema is nil or declares no fields")
	}
	var cfg elicitConfig
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}
	if cfg.id == "" {
		cfg.id = uuid.NewString()
	}
	req := &Request{ID: cfg.id, Source: source, Message: message, Schema: schema}

	ctx = logctx.WithElicitData(ctx, &logctx.ElicitData{RequestID: req.ID, Source: source})
	ctx, span := r.tracer.Start(ctx, "elicitation.request", trace.WithAttributes(
		attribute.String("elicitation.id", req.ID),
		attribute.String("elicitation.source", source),
		attribute.String("elicitation.schema", schema.Fingerprint()),
	))
	defer span.End()

	res, err := r.await(ctx, req, cfg.strict)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.ErrorContext(ctx, "elicitation.request.err", slog.String("err", err.Error()))
		return nil, err
	}
	span.SetAttributes(attribute.String("elicitation.action", string(res.Action())))
	r.log.InfoContext(ctx, "elicitation.request."+string(res.Action()))
	return res, nil
}

// Callback exposes r as a Callback, so a Requester's timeout, validation and
// tracing can sit behind another transport.
func (r *Requester) Callback() Callback {
	return CallbackFunc(func(ctx context.Context, req *Request) (Result, error) {
		return r.Elicit(ctx, req.Source, req.Message, req.Schema, WithRequestID(req.ID))
	})
}

func (r *Requester) await(ctx context.Context, req *Request, strict bool) (Result, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	r.log.DebugContext(ctx, "elicitation.request.start", slog.Int("fields", req.Schema.Len()))

	// Buffered so the callback goroutine never blocks after we stop waiting.
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- outcome{err: fmt.Errorf("elicitation: callback panicked: %v", p)}
			}
		}()
		res, err := r.cb.Elicit(ctx, req)
		done <- outcome{res: res, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			if ctx.Err() != nil {
				return r.stopped(ctx)
			}
			return nil, fmt.Errorf("elicitation: callback: %w", out.err)
		}
		if out.res == nil {
			return nil, ErrNilResult
		}
		return r.finish(req, normalize(out.res), strict)
	case <-ctx.Done():
		return r.stopped(ctx)
	}
}

func (r *Requester) stopped(ctx context.Context) (Result, error) {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.log.WarnContext(ctx, "elicitation.request.timeout")
		if r.policy == TimeoutError {
			return nil, ErrTimeout
		}
	}
	return Cancelled{}, nil
}

func (r *Requester) finish(req *Request, res Result, strict bool) (Result, error) {
	a, ok := res.(Accepted)
	if !ok {
		return res, nil
	}
	var vopts []ValidateOption
	if strict {
		vopts = append(vopts, RejectUnknownKeys())
	}
	data, err := Validate(req.Schema, a.Data, vopts...)
	if err != nil {
		return nil, err
	}
	return Accepted{Data: data}, nil
}
