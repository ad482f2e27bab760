package outbound

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/elicit/internal/jsonrpc"
)

// Transport abstracts how requests and cancellations reach the peer.
type Transport interface {
	// SendRequest emits the request carrying the pre-allocated id.
	SendRequest(ctx context.Context, req *jsonrpc.Message) error
	// SendCancelled tells the peer the request with the given id is abandoned.
	SendCancelled(ctx context.Context, requestID string) error
}

var (
	// ErrDispatcherClosed indicates the dispatcher is closed.
	ErrDispatcherClosed = errors.New("dispatcher closed")
	// ErrRemoteCancelled indicates the peer cancelled the request.
	ErrRemoteCancelled = errors.New("remote cancelled")
)

type pendingCall struct {
	respCh chan *jsonrpc.Message
	errCh  chan error
}

// Dispatcher correlates outgoing JSON-RPC requests with their responses and
// handles cancellation in both directions. It is transport-agnostic: the
// owner feeds it incoming responses and cancellations.
type Dispatcher struct {
	t Transport

	mu      sync.Mutex
	pending map[string]*pendingCall // id.String() -> call

	nextID atomic.Int64

	closed   atomic.Bool
	closeErr error
}

// New constructs a Dispatcher using the provided transport.
func New(t Transport) *Dispatcher {
	return &Dispatcher{t: t, pending: make(map[string]*pendingCall)}
}

// Call sends a JSON-RPC request and waits for a response or context
// cancellation. On cancellation the peer is notified best-effort.
func (d *Dispatcher) Call(ctx context.Context, method string, params any) (*jsonrpc.Message, error) {
	if err := d.closedErr(); err != nil {
		return nil, err
	}

	id := jsonrpc.NumberID(d.nextID.Add(1))
	key := id.String()
	req, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	// Register before sending so a fast response is never missed.
	pc := &pendingCall{respCh: make(chan *jsonrpc.Message, 1), errCh: make(chan error, 1)}
	d.mu.Lock()
	if d.closed.Load() {
		d.mu.Unlock()
		return nil, d.closedErr()
	}
	d.pending[key] = pc
	d.mu.Unlock()

	if err := d.t.SendRequest(ctx, req); err != nil {
		d.forget(key)
		return nil, err
	}

	select {
	case resp := <-pc.respCh:
		return resp, nil
	case err := <-pc.errCh:
		return nil, err
	case <-ctx.Done():
		d.forget(key)
		_ = d.t.SendCancelled(context.WithoutCancel(ctx), key)
		return nil, ctx.Err()
	}
}

func (d *Dispatcher) forget(key string) {
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}

func (d *Dispatcher) closedErr() error {
	if !d.closed.Load() {
		return nil
	}
	if d.closeErr != nil {
		return d.closeErr
	}
	return ErrDispatcherClosed
}

// take removes and returns the pending call for key.
func (d *Dispatcher) take(key string) (*pendingCall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pc, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	return pc, ok
}

// OnResponse delivers an incoming response to a waiting call. Unmatched
// responses are ignored.
func (d *Dispatcher) OnResponse(resp *jsonrpc.Message) {
	if resp == nil || resp.ID.IsNull() {
		return
	}
	if pc, ok := d.take(resp.ID.String()); ok {
		pc.respCh <- resp
	}
}

// OnCancelled fails the waiting call with ErrRemoteCancelled when the peer
// abandons a request.
func (d *Dispatcher) OnCancelled(requestID string) {
	if pc, ok := d.take(requestID); ok {
		pc.errCh <- ErrRemoteCancelled
	}
}

// Pending reports the number of calls awaiting a response.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Close fails all pending calls with err and prevents new calls.
func (d *Dispatcher) Close(err error) {
	if err == nil {
		err = ErrDispatcherClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed.Load() {
		return
	}
	d.closeErr = err
	d.closed.Store(true)
	for key, pc := range d.pending {
		delete(d.pending, key)
		pc.errCh <- err
	}
}
