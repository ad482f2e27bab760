package remote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/jsonrpc"
	"github.com/ggoodman/elicit/internal/logctx"
)

// Serve answers elicitation/create requests read from r using cb, writing
// responses to w. Requests are handled concurrently; a notifications/cancelled
// from the peer cancels the matching callback's context.
//
// Serve returns nil when r reaches EOF, after in-flight requests have been
// cancelled and finished. It returns ctx.Err() if ctx ends first, and the
// read error for any other stream failure.
func Serve(ctx context.Context, r io.Reader, w io.Writer, cb elicitation.Callback, opts ...Option) error {
	if cb == nil {
		return elicitation.ErrNoCallback
	}
	o := buildOptions(opts)
	s := &server{
		log:      o.log,
		cb:       cb,
		w:        newWriter(w),
		inflight: make(map[string]context.CancelFunc),
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- readMessages(r, func(msg *jsonrpc.Message) { s.handle(ctx, msg) }, s.bad)
	}()

	var err error
	select {
	case err = <-errCh:
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	cancel()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	return err
}

type server struct {
	log *slog.Logger
	cb  elicitation.Callback
	w   *writer
	wg  sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	closed   bool
}

func (s *server) bad(err error) {
	s.log.Warn("remote.serve.decode.err", slog.String("err", err.Error()))
	_ = s.w.write(jsonrpc.NewError(nil, jsonrpc.ErrorCodeParseError, err.Error()))
}

func (s *server) handle(ctx context.Context, msg *jsonrpc.Message) {
	// Serve may already have returned; nothing new may start after wg.Wait.
	if ctx.Err() != nil {
		return
	}
	switch msg.Kind() {
	case jsonrpc.KindNotification:
		if msg.Method == MethodCancelled {
			s.cancelled(msg)
		}
	case jsonrpc.KindRequest:
		if msg.Method != MethodElicitationCreate {
			_ = s.w.write(jsonrpc.NewError(msg.ID, jsonrpc.ErrorCodeMethodNotFound, "method not found: "+msg.Method))
			return
		}
		s.create(ctx, msg)
	default:
		s.log.Debug("remote.serve.response.ignored", slog.String("id", msg.ID.String()))
	}
}

func (s *server) cancelled(msg *jsonrpc.Message) {
	p, err := msg.CancelledParams()
	if err != nil {
		s.log.Warn("remote.serve.cancelled.err", slog.String("err", err.Error()))
		return
	}
	s.mu.Lock()
	cancel, ok := s.inflight[p.RequestID]
	s.mu.Unlock()
	if ok {
		s.log.Info("remote.serve.cancelled", slog.String("id", p.RequestID), slog.String("reason", p.Reason))
		cancel()
	}
}

func (s *server) create(ctx context.Context, msg *jsonrpc.Message) {
	id := msg.ID
	p, err := msg.CreateParams()
	if err != nil {
		_ = s.w.write(jsonrpc.ErrorFor(id, err))
		return
	}

	key := id.String()
	reqCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		cancel()
		return
	}
	s.inflight[key] = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	reqCtx = logctx.WithRPCMessage(reqCtx, &logctx.RPCMessage{Method: MethodElicitationCreate, ID: key, Type: "request"})
	reqCtx = logctx.WithElicitData(reqCtx, &logctx.ElicitData{RequestID: p.RequestID, Source: p.Source})

	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, key)
			s.mu.Unlock()
			cancel()
		}()

		res, err := s.answer(reqCtx, p.Request())
		if err != nil {
			s.log.ErrorContext(reqCtx, "remote.serve.callback.err", slog.String("err", err.Error()))
			_ = s.w.write(jsonrpc.NewError(id, jsonrpc.ErrorCodeInternalError, err.Error()))
			return
		}
		resp, err := jsonrpc.NewResult(id, elicitation.ResponseOf(res))
		if err != nil {
			_ = s.w.write(jsonrpc.ErrorFor(id, err))
			return
		}
		if err := s.w.write(resp); err != nil {
			s.log.WarnContext(reqCtx, "remote.serve.write.err", slog.String("err", err.Error()))
		}
	}()
}

// answer runs the callback, treating a cancelled request as Cancelled.
func (s *server) answer(ctx context.Context, req *elicitation.Request) (res elicitation.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "remote.serve.callback.panic", slog.Any("panic", r))
			res, err = nil, elicitation.ErrNilResult
		}
	}()
	res, err = s.cb.Elicit(ctx, req)
	if ctx.Err() != nil {
		return elicitation.Cancelled{}, nil
	}
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, elicitation.ErrNilResult
	}
	return res, nil
}
