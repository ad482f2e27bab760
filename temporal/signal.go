package temporal

import (
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/workflow"

	"github.com/ggoodman/elicit/elicitation"
)

const (
	// SignalAnswer is the signal carrying an Answer.
	SignalAnswer = "elicit.answer"
	// QueryPending returns the pending *elicitation.Request, or null.
	QueryPending = "elicit.pending"
)

// Answer is the payload of SignalAnswer.
type Answer struct {
	RequestID string             `json:"requestId"`
	Action    elicitation.Action `json:"action"`
	Content   map[string]any     `json:"content,omitempty"`
}

// AnswerOf builds the Answer for request id from a Result.
func AnswerOf(requestID string, res elicitation.Result) Answer {
	resp := elicitation.ResponseOf(res)
	return Answer{RequestID: requestID, Action: resp.Action, Content: resp.Content}
}

func (a Answer) response() elicitation.Response {
	return elicitation.Response{Action: a.Action, Content: a.Content}
}

// Elicit publishes req as the workflow's pending request and blocks until a
// matching Answer is signalled, the workflow is cancelled or the timeout
// fires. Answers for other request ids, and accepted answers that fail
// validation, are logged and ignored so the answerer can try again.
//
// Only one Elicit should be outstanding per workflow at a time.
func Elicit(ctx workflow.Context, req *elicitation.Request, opts ...Option) (elicitation.Result, error) {
	o := buildOptions(opts)
	pending, err := prepare(ctx, req, o)
	if err != nil {
		return nil, err
	}
	logger := workflow.GetLogger(ctx)

	if err := workflow.SetQueryHandler(ctx, QueryPending, func() (*elicitation.Request, error) {
		return pending, nil
	}); err != nil {
		return nil, fmt.Errorf("temporal: register pending query: %w", err)
	}
	defer func() {
		_ = workflow.SetQueryHandler(ctx, QueryPending, func() (*elicitation.Request, error) {
			return nil, nil
		})
	}()

	waitCtx, cancelWait := workflow.WithCancel(ctx)
	defer cancelWait()

	var (
		result    elicitation.Result
		cancelled bool
		timedOut  bool
	)
	sel := workflow.NewSelector(ctx)
	sel.AddReceive(workflow.GetSignalChannel(ctx, SignalAnswer), func(c workflow.ReceiveChannel, more bool) {
		var ans Answer
		c.Receive(ctx, &ans)
		if ans.RequestID != pending.ID {
			logger.Warn("elicit.answer.mismatch", "want", pending.ID, "got", ans.RequestID)
			return
		}
		res, err := resolve(pending.Schema, ans.response(), o)
		if err != nil {
			logger.Warn("elicit.answer.invalid", "request_id", pending.ID, "err", err.Error())
			return
		}
		result = res
	})
	sel.AddReceive(ctx.Done(), func(c workflow.ReceiveChannel, more bool) {
		cancelled = true
	})
	if o.timeout > 0 {
		sel.AddFuture(workflow.NewTimer(waitCtx, o.timeout), func(f workflow.Future) {
			if f.Get(waitCtx, nil) == nil {
				timedOut = true
			}
		})
	}

	logger.Info("elicit.pending", "request_id", pending.ID, "source", pending.Source)
	for result == nil && !cancelled && !timedOut {
		sel.Select(ctx)
	}

	switch {
	case result != nil:
		logger.Info("elicit.answered", "request_id", pending.ID, "action", string(result.Action()))
		return result, nil
	case cancelled:
		logger.Info("elicit.cancelled", "request_id", pending.ID)
		return elicitation.Cancelled{}, nil
	default:
		logger.Info("elicit.timeout", "request_id", pending.ID)
		return o.timedOut()
	}
}

// prepare checks req and assigns its id.
func prepare(ctx workflow.Context, req *elicitation.Request, o options) (*elicitation.Request, error) {
	if req == nil || req.Schema == nil || req.Schema.Len() == 0 {
		return nil, fmt.Errorf("%w: request has no fields", elicitation.ErrInvalidSchema)
	}
	pending := *req
	switch {
	case o.requestID != "":
		pending.ID = o.requestID
	case pending.ID == "":
		id, err := newRequestID(ctx)
		if err != nil {
			return nil, err
		}
		pending.ID = id
	}
	return &pending, nil
}

// newRequestID derives an id from the workflow id and a suffix recorded in
// history, so replays see the same id.
func newRequestID(ctx workflow.Context) (string, error) {
	var suffix string
	enc := workflow.SideEffect(ctx, func(workflow.Context) any { return uuid.NewString() })
	if err := enc.Get(&suffix); err != nil {
		return "", fmt.Errorf("temporal: request id: %w", err)
	}
	return workflow.GetInfo(ctx).WorkflowExecution.ID + "/" + suffix, nil
}

// resolve converts a wire response to a Result, validating accepted content.
func resolve(schema *elicitation.Schema, resp elicitation.Response, o options) (elicitation.Result, error) {
	res := elicitation.ResultOf(resp)
	acc, ok := res.(elicitation.Accepted)
	if !ok {
		return res, nil
	}
	data, err := elicitation.Validate(schema, acc.Data, o.validateOptions()...)
	if err != nil {
		return nil, err
	}
	return elicitation.Accepted{Data: data}, nil
}
