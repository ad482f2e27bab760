package temporal

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ggoodman/elicit/elicitation"
)

const (
	defaultActivityTimeout  = 10 * time.Minute
	defaultHeartbeatTimeout = 30 * time.Second
)

// Option configures Elicit and ExecuteElicitation.
type Option func(*options)

type options struct {
	requestID string
	timeout   time.Duration
	policy    elicitation.TimeoutPolicy
	strict    bool
	queue     string
	heartbeat time.Duration
}

// WithRequestID fixes the request id instead of deriving one.
func WithRequestID(id string) Option {
	return func(o *options) { o.requestID = id }
}

// WithTimeout bounds the wait. Zero waits until answered or cancelled, except
// for ExecuteElicitation, which falls back to a ten minute activity timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTimeoutPolicy chooses what a timeout resolves to. Defaults to
// elicitation.TimeoutCancel.
func WithTimeoutPolicy(p elicitation.TimeoutPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithStrictKeys rejects accepted content with keys the schema does not
// declare.
func WithStrictKeys() Option {
	return func(o *options) { o.strict = true }
}

// WithTaskQueue routes the elicitation activity to a specific task queue.
func WithTaskQueue(q string) Option {
	return func(o *options) { o.queue = q }
}

// WithHeartbeatTimeout sets how long the elicitation activity may go without
// a heartbeat. Cancellation of the workflow reaches the prompting worker on
// its next heartbeat. Defaults to 30 seconds.
func WithHeartbeatTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.heartbeat = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{policy: elicitation.TimeoutCancel, heartbeat: defaultHeartbeatTimeout}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// activityOptions never retries: a second attempt would prompt again.
func (o options) activityOptions() workflow.ActivityOptions {
	timeout := o.timeout
	if timeout == 0 {
		timeout = defaultActivityTimeout
	}
	return workflow.ActivityOptions{
		StartToCloseTimeout: timeout,
		HeartbeatTimeout:    o.heartbeat,
		TaskQueue:           o.queue,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	}
}

func (o options) validateOptions() []elicitation.ValidateOption {
	if o.strict {
		return []elicitation.ValidateOption{elicitation.RejectUnknownKeys()}
	}
	return nil
}

// timedOut resolves a timeout according to the policy.
func (o options) timedOut() (elicitation.Result, error) {
	if o.policy == elicitation.TimeoutError {
		return nil, elicitation.ErrTimeout
	}
	return elicitation.Cancelled{}, nil
}
