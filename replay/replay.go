// Package replay records elicitation answers so that re-running a request
// with the same id does not prompt the user again.
//
// A Callback returned by New answers from storage when a response for the
// request id and schema fingerprint has already been recorded, and delegates
// to the wrapped Callback otherwise. Only valid Accepted answers and Declined
// answers are recorded; Cancelled means nobody answered and is retried next
// time.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/storage"
)

// DefaultPrefix namespaces replay keys.
const DefaultPrefix = "replay:"

// ErrMissingRequestID is returned for requests without an id; they cannot
// be keyed.
var ErrMissingRequestID = errors.New("replay: request has no id")

// Callback is an elicitation.Callback that replays recorded answers.
type Callback struct {
	inner  elicitation.Callback
	store  storage.Storage
	log    *slog.Logger
	prefix string
	ttl    time.Duration
}

var _ elicitation.Callback = (*Callback)(nil)

// Option configures a Callback.
type Option func(*Callback)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Callback) {
		if l != nil {
			c.log = l
		}
	}
}

// WithPrefix sets the key prefix. Defaults to DefaultPrefix.
func WithPrefix(p string) Option {
	return func(c *Callback) { c.prefix = p }
}

// WithTTL expires recorded answers after d. Zero keeps them forever.
func WithTTL(d time.Duration) Option {
	return func(c *Callback) { c.ttl = d }
}

// New wraps inner so that its answers are recorded in store.
func New(inner elicitation.Callback, store storage.Storage, opts ...Option) (*Callback, error) {
	if inner == nil {
		return nil, elicitation.ErrNoCallback
	}
	if store == nil {
		return nil, errors.New("replay: storage is required")
	}
	c := &Callback{inner: inner, store: store, log: slog.Default(), prefix: DefaultPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Key returns the storage key for req.
func (c *Callback) Key(req *elicitation.Request) string {
	return c.prefix + req.ID + ":" + req.Schema.Fingerprint()
}

func (c *Callback) Elicit(ctx context.Context, req *elicitation.Request) (elicitation.Result, error) {
	if req.ID == "" {
		return nil, ErrMissingRequestID
	}
	key := c.Key(req)

	item, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("replay: lookup %s: %w", key, err)
	}
	if item != nil {
		var resp elicitation.Response
		if err := json.Unmarshal(item.Data, &resp); err != nil {
			c.log.WarnContext(ctx, "replay.decode.err", slog.String("key", key), slog.String("err", err.Error()))
		} else {
			c.log.DebugContext(ctx, "replay.hit", slog.String("key", key), slog.String("action", string(resp.Action)))
			return elicitation.ResultOf(resp), nil
		}
	}

	res, err := c.inner.Elicit(ctx, req)
	if err != nil || res == nil {
		return res, err
	}
	switch r := res.(type) {
	case elicitation.Cancelled:
		return res, nil
	case elicitation.Accepted:
		if _, verr := elicitation.Validate(req.Schema, r.Data); verr != nil {
			return res, nil
		}
	}

	data, err := json.Marshal(elicitation.ResponseOf(res))
	if err != nil {
		return nil, fmt.Errorf("replay: encode answer: %w", err)
	}
	if err := c.store.Set(ctx, key, data, storage.WithTTL(c.ttl)); err != nil {
		// The answer is still good; it just will not be replayed.
		c.log.WarnContext(ctx, "replay.store.err", slog.String("key", key), slog.String("err", err.Error()))
	}
	return res, nil
}

// Forget drops the recorded answer for req, if any.
func (c *Callback) Forget(ctx context.Context, req *elicitation.Request) error {
	return c.store.Delete(ctx, c.Key(req))
}
