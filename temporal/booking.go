package temporal

import (
	"context"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/workflow"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/booking"
)

// BookingWorkflowName is the registered name of BookingWorkflow.
const BookingWorkflowName = "elicit.Booking"

// BookingInput starts a BookingWorkflow.
type BookingInput struct {
	Reservation booking.Reservation `json:"reservation"`
	// Timeout bounds the wait for an answer. Zero waits indefinitely.
	Timeout time.Duration `json:"timeout,omitempty"`
	// ViaActivity prompts on a worker through ExecuteElicitation instead of
	// waiting for a signalled answer.
	ViaActivity bool `json:"viaActivity,omitempty"`
}

// BookingWorkflow asks for confirmation of a reservation and returns the
// outcome wording.
func BookingWorkflow(ctx workflow.Context, in BookingInput) (string, error) {
	req := &elicitation.Request{
		Source:  booking.Source,
		Message: booking.Message(in.Reservation),
		Schema:  booking.Schema(),
	}
	elicit := Elicit
	if in.ViaActivity {
		elicit = ExecuteElicitation
	}
	res, err := elicit(ctx, req, WithTimeout(in.Timeout))
	if err != nil {
		return "", err
	}
	return booking.Outcome(res), nil
}

// StartBooking starts a BookingWorkflow with the given workflow id.
func StartBooking(ctx context.Context, c client.Client, taskQueue, workflowID string, in BookingInput) (client.WorkflowRun, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{ID: workflowID, TaskQueue: taskQueue}, BookingWorkflowName, in)
	if err != nil {
		return nil, mapSignalError(err)
	}
	return run, nil
}
