package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/ggoodman/elicit/elicitation"
)

// ClientOptions configures NewClient.
type ClientOptions struct {
	HostPort  string
	Namespace string
	Logger    *slog.Logger

	// DisableTracing skips the OTEL tracing interceptor.
	DisableTracing bool
	// DisableMetrics skips the OTEL metrics handler.
	DisableMetrics bool
}

// NewClient returns a lazily connecting Temporal client. Unless disabled, an
// OTEL tracing interceptor and metrics handler are installed; workers created
// from the client inherit the interceptor.
func NewClient(opts ClientOptions) (client.Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	co := client.Options{
		HostPort:  opts.HostPort,
		Namespace: opts.Namespace,
		Logger:    log.NewStructuredLogger(logger),
	}
	if !opts.DisableTracing {
		tracer, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{})
		if err != nil {
			return nil, fmt.Errorf("temporal: configure tracing interceptor: %w", err)
		}
		co.Interceptors = append(co.Interceptors, tracer)
	}
	if !opts.DisableMetrics {
		co.MetricsHandler = temporalotel.NewMetricsHandler(temporalotel.MetricsHandlerOptions{})
	}
	c, err := client.NewLazyClient(co)
	if err != nil {
		return nil, fmt.Errorf("temporal: create client: %w", err)
	}
	return c, nil
}

// WorkerOptions configures NewWorker.
type WorkerOptions struct {
	// Activities, when set, registers ActivityElicit so that
	// ExecuteElicitation prompts on this worker.
	Activities *Activities
	// Interceptors are added to the worker in addition to those inherited
	// from the client.
	Interceptors []interceptor.WorkerInterceptor
}

// NewWorker returns a worker on taskQueue with BookingWorkflow registered.
func NewWorker(c client.Client, taskQueue string, opts WorkerOptions) (worker.Worker, error) {
	if c == nil {
		return nil, errors.New("temporal: client is required")
	}
	if taskQueue == "" {
		return nil, errors.New("temporal: task queue is required")
	}
	w := worker.New(c, taskQueue, worker.Options{Interceptors: opts.Interceptors})
	w.RegisterWorkflowWithOptions(BookingWorkflow, workflow.RegisterOptions{Name: BookingWorkflowName})
	if opts.Activities != nil {
		w.RegisterActivityWithOptions(opts.Activities.Elicit, activity.RegisterOptions{Name: ActivityElicit})
	}
	return w, nil
}

// SendAnswer signals ans to the workflow. runID may be empty to target the
// latest run.
func SendAnswer(ctx context.Context, c client.Client, workflowID, runID string, ans Answer) error {
	if workflowID == "" {
		return fmt.Errorf("workflow id is required")
	}
	return mapSignalError(c.SignalWorkflow(ctx, workflowID, runID, SignalAnswer, ans))
}

// PendingRequest queries the workflow for its pending request. It returns
// nil when nothing is pending.
func PendingRequest(ctx context.Context, c client.Client, workflowID, runID string) (*elicitation.Request, error) {
	if workflowID == "" {
		return nil, fmt.Errorf("workflow id is required")
	}
	val, err := c.QueryWorkflow(ctx, workflowID, runID, QueryPending)
	if err != nil {
		return nil, mapSignalError(err)
	}
	if val == nil || !val.HasValue() {
		return nil, nil
	}
	var req *elicitation.Request
	if err := val.Get(&req); err != nil {
		return nil, fmt.Errorf("temporal: decode pending request: %w", err)
	}
	return req, nil
}
