package replay

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/storage/memory"
)

func schema(t *testing.T) *elicitation.Schema {
	t.Helper()
	s, err := elicitation.NewBuilder().
		Boolean("confirm", elicitation.Required()).
		Text("notes", elicitation.Default("")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return s
}

type counting struct {
	calls atomic.Int32
	res   elicitation.Result
	err   error
}

func (c *counting) Elicit(ctx context.Context, req *elicitation.Request) (elicitation.Result, error) {
	c.calls.Add(1)
	return c.res, c.err
}

func newReplay(t *testing.T, inner elicitation.Callback, opts ...Option) *Callback {
	t.Helper()
	store, err := memory.New(16)
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	c, err := New(inner, store, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestReplay_AcceptedIsRecorded(t *testing.T) {
	inner := &counting{res: elicitation.Accepted{Data: map[string]any{"confirm": true, "notes": "window"}}}
	c := newReplay(t, inner)
	req := &elicitation.Request{ID: "r1", Message: "Confirm?", Schema: schema(t)}

	for i := range 3 {
		res, err := c.Elicit(context.Background(), req)
		if err != nil {
			t.Fatalf("Elicit #%d: %v", i, err)
		}
		acc, ok := res.(elicitation.Accepted)
		if !ok || acc.Data["confirm"] != true || acc.Data["notes"] != "window" {
			t.Fatalf("Elicit #%d: unexpected result %#v", i, res)
		}
	}
	if n := inner.calls.Load(); n != 1 {
		t.Fatalf("expected inner callback once, got %d", n)
	}
}

func TestReplay_DeclinedIsRecorded(t *testing.T) {
	inner := &counting{res: elicitation.Declined{}}
	c := newReplay(t, inner)
	req := &elicitation.Request{ID: "r1", Schema: schema(t)}

	for range 2 {
		if res, _ := c.Elicit(context.Background(), req); res != (elicitation.Declined{}) {
			t.Fatalf("expected Declined, got %#v", res)
		}
	}
	if n := inner.calls.Load(); n != 1 {
		t.Fatalf("expected inner callback once, got %d", n)
	}
}

func TestReplay_CancelledIsNotRecorded(t *testing.T) {
	inner := &counting{res: elicitation.Cancelled{}}
	c := newReplay(t, inner)
	req := &elicitation.Request{ID: "r1", Schema: schema(t)}

	_, _ = c.Elicit(context.Background(), req)
	_, _ = c.Elicit(context.Background(), req)
	if n := inner.calls.Load(); n != 2 {
		t.Fatalf("expected cancelled answers to be retried, got %d calls", n)
	}
}

func TestReplay_InvalidAcceptedIsNotRecorded(t *testing.T) {
	inner := &counting{res: elicitation.Accepted{Data: map[string]any{"confirm": "maybe"}}}
	c := newReplay(t, inner)
	req := &elicitation.Request{ID: "r1", Schema: schema(t)}

	_, _ = c.Elicit(context.Background(), req)
	_, _ = c.Elicit(context.Background(), req)
	if n := inner.calls.Load(); n != 2 {
		t.Fatalf("expected invalid answers to be retried, got %d calls", n)
	}
}

func TestReplay_ErrorsAreNotRecorded(t *testing.T) {
	boom := errors.New("transport down")
	inner := &counting{err: boom}
	c := newReplay(t, inner)
	req := &elicitation.Request{ID: "r1", Schema: schema(t)}

	if _, err := c.Elicit(context.Background(), req); !errors.Is(err, boom) {
		t.Fatalf("expected inner error, got %v", err)
	}
	inner.err, inner.res = nil, elicitation.Declined{}
	if res, _ := c.Elicit(context.Background(), req); res != (elicitation.Declined{}) {
		t.Fatalf("expected fresh answer, got %#v", res)
	}
}

func TestReplay_KeyIncludesFingerprint(t *testing.T) {
	inner := &counting{res: elicitation.Declined{}}
	c := newReplay(t, inner, WithPrefix("p:"))
	other := elicitation.NewBuilder().Text("name", elicitation.Required()).MustBuild()

	_, _ = c.Elicit(context.Background(), &elicitation.Request{ID: "r1", Schema: schema(t)})
	_, _ = c.Elicit(context.Background(), &elicitation.Request{ID: "r1", Schema: other})
	if n := inner.calls.Load(); n != 2 {
		t.Fatalf("a changed schema must not replay, got %d calls", n)
	}
	if got, want := c.Key(&elicitation.Request{ID: "r1", Schema: other}), "p:r1:"+other.Fingerprint(); got != want {
		t.Fatalf("Key = %q, want %q", got, want)
	}
}

func TestReplay_TTL(t *testing.T) {
	inner := &counting{res: elicitation.Declined{}}
	c := newReplay(t, inner, WithTTL(10*time.Millisecond))
	req := &elicitation.Request{ID: "r1", Schema: schema(t)}

	_, _ = c.Elicit(context.Background(), req)
	time.Sleep(30 * time.Millisecond)
	_, _ = c.Elicit(context.Background(), req)
	if n := inner.calls.Load(); n != 2 {
		t.Fatalf("expected expired answer to be asked again, got %d calls", n)
	}
}

func TestReplay_Forget(t *testing.T) {
	inner := &counting{res: elicitation.Declined{}}
	c := newReplay(t, inner)
	req := &elicitation.Request{ID: "r1", Schema: schema(t)}

	_, _ = c.Elicit(context.Background(), req)
	if err := c.Forget(context.Background(), req); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	_, _ = c.Elicit(context.Background(), req)
	if n := inner.calls.Load(); n != 2 {
		t.Fatalf("expected forgotten answer to be asked again, got %d calls", n)
	}
}

func TestReplay_RequiresID(t *testing.T) {
	c := newReplay(t, &counting{res: elicitation.Declined{}})
	if _, err := c.Elicit(context.Background(), &elicitation.Request{Schema: schema(t)}); !errors.Is(err, ErrMissingRequestID) {
		t.Fatalf("expected ErrMissingRequestID, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	store, _ := memory.New(1)
	defer store.Close()
	if _, err := New(nil, store); !errors.Is(err, elicitation.ErrNoCallback) {
		t.Fatalf("expected ErrNoCallback, got %v", err)
	}
	if _, err := New(&counting{}, nil); err == nil {
		t.Fatal("expected error without storage")
	}
}

func TestReplay_ThroughRequester(t *testing.T) {
	inner := &counting{res: elicitation.Accepted{Data: map[string]any{"confirm": true}}}
	c := newReplay(t, inner)
	r, err := elicitation.NewRequester(c)
	if err != nil {
		t.Fatalf("NewRequester: %v", err)
	}
	sch := schema(t)
	for range 2 {
		res, err := r.Elicit(context.Background(), "booking", "Confirm?", sch, elicitation.WithRequestID("booking-1"))
		if err != nil {
			t.Fatalf("Elicit: %v", err)
		}
		acc, ok := res.(elicitation.Accepted)
		if !ok || acc.Data["confirm"] != true || acc.Data["notes"] != "" {
			t.Fatalf("unexpected result %#v", res)
		}
	}
	if n := inner.calls.Load(); n != 1 {
		t.Fatalf("expected one prompt across replays, got %d", n)
	}
}
