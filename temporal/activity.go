package temporal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/logctx"
)

// ActivityElicit is the registered name of Activities.Elicit.
const ActivityElicit = "elicit.Execute"

// Activities runs elicitations on a worker through a Requester.
type Activities struct {
	requester *elicitation.Requester
}

// NewActivities returns activities that prompt through r.
func NewActivities(r *elicitation.Requester) (*Activities, error) {
	if r == nil {
		return nil, errors.New("temporal: requester is required")
	}
	return &Activities{requester: r}, nil
}

// Elicit prompts for req and returns the wire form of the answer.
func (a *Activities) Elicit(ctx context.Context, req *elicitation.Request) (*elicitation.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: nil request", elicitation.ErrInvalidSchema)
	}
	info := activity.GetInfo(ctx)
	ctx = logctx.WithWorkflowData(ctx, &logctx.WorkflowData{
		WorkflowID: info.WorkflowExecution.ID,
		RunID:      info.WorkflowExecution.RunID,
	})
	stop := heartbeat(ctx, info.HeartbeatTimeout)
	res, err := a.requester.Elicit(ctx, req.Source, req.Message, req.Schema, elicitation.WithRequestID(req.ID))
	stop()
	if err != nil {
		if errors.Is(err, elicitation.ErrTimeout) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), "ElicitationTimeout", err)
		}
		return nil, err
	}
	resp := elicitation.ResponseOf(res)
	return &resp, nil
}

// heartbeat records activity heartbeats until stop is called. The server
// reports workflow cancellation in the heartbeat response, which cancels ctx
// and so resolves the pending prompt as Cancelled.
func heartbeat(ctx context.Context, timeout time.Duration) (stop func()) {
	if timeout <= 0 {
		timeout = defaultHeartbeatTimeout
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		t := time.NewTicker(timeout / 2)
		defer t.Stop()
		activity.RecordHeartbeat(ctx)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-t.C:
				activity.RecordHeartbeat(ctx)
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// ExecuteElicitation runs req through the ActivityElicit activity and
// resolves its answer. A cancelled activity resolves to Cancelled; an
// activity or requester timeout follows the timeout policy.
func ExecuteElicitation(ctx workflow.Context, req *elicitation.Request, opts ...Option) (elicitation.Result, error) {
	o := buildOptions(opts)
	pending, err := prepare(ctx, req, o)
	if err != nil {
		return nil, err
	}

	actx := workflow.WithActivityOptions(ctx, o.activityOptions())
	var resp elicitation.Response
	err = workflow.ExecuteActivity(actx, ActivityElicit, pending).Get(actx, &resp)
	switch {
	case err == nil:
	case temporal.IsCanceledError(err):
		return elicitation.Cancelled{}, nil
	case temporal.IsTimeoutError(err), isTimeoutApplicationError(err):
		return o.timedOut()
	default:
		return nil, fmt.Errorf("temporal: elicitation activity: %w", err)
	}
	return resolve(pending.Schema, resp, o)
}

func isTimeoutApplicationError(err error) bool {
	var appErr *temporal.ApplicationError
	return errors.As(err, &appErr) && appErr.Type() == "ElicitationTimeout"
}
