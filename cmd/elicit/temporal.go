package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"

	"github.com/ggoodman/elicit/elicitation"
	"github.com/ggoodman/elicit/internal/booking"
	"github.com/ggoodman/elicit/temporal"
)

func (a *app) temporalClient() (client.Client, error) {
	return temporal.NewClient(temporal.ClientOptions{
		HostPort:  a.cfg.Temporal.HostPort,
		Namespace: a.cfg.Temporal.Namespace,
		Logger:    a.log,
	})
}

func newWorkerCmd(a *app) *cobra.Command {
	var prompt bool

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run a Temporal worker for booking workflows",
		Long: "Run a Temporal worker for booking workflows. With --prompt the worker also\n" +
			"executes activity-based elicitations by prompting on this terminal.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.temporalClient()
			if err != nil {
				return err
			}
			defer c.Close()

			var opts temporal.WorkerOptions
			if prompt {
				r, err := a.requester(a.console(cmd))
				if err != nil {
					return err
				}
				if opts.Activities, err = temporal.NewActivities(r); err != nil {
					return err
				}
			}
			w, err := temporal.NewWorker(c, a.cfg.Temporal.TaskQueue, opts)
			if err != nil {
				return err
			}

			stop := make(chan any)
			go func() {
				<-cmd.Context().Done()
				close(stop)
			}()
			a.log.Info("worker.start", "task_queue", a.cfg.Temporal.TaskQueue, "prompt", prompt)
			return w.Run(stop)
		},
	}
	cmd.Flags().BoolVar(&prompt, "prompt", false, "Execute elicitation activities on this terminal")

	return cmd
}

type startFlags struct {
	workflowID  string
	party       int
	when        string
	viaActivity bool
	wait        bool
}

func newStartCmd(a *app) *cobra.Command {
	var flags startFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a booking workflow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.workflowID == "" {
				return errors.New("--workflow-id is required")
			}
			c, err := a.temporalClient()
			if err != nil {
				return err
			}
			defer c.Close()

			in := temporal.BookingInput{
				Reservation: booking.Reservation{Party: flags.party, When: flags.when},
				Timeout:     a.cfg.Timeout,
				ViaActivity: flags.viaActivity,
			}
			run, err := temporal.StartBooking(cmd.Context(), c, a.cfg.Temporal.TaskQueue, flags.workflowID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "started %s (run %s)\n", run.GetID(), run.GetRunID())
			if !flags.wait {
				return nil
			}
			var outcome string
			if err := run.Get(cmd.Context(), &outcome); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.workflowID, "workflow-id", "", "Workflow id")
	cmd.Flags().IntVar(&flags.party, "party", 2, "Number of people")
	cmd.Flags().StringVar(&flags.when, "when", "June 21st at 5pm", "Date and time of the booking")
	cmd.Flags().BoolVar(&flags.viaActivity, "via-activity", false, "Prompt from a worker activity instead of waiting for a signal")
	cmd.Flags().BoolVar(&flags.wait, "wait", false, "Wait for the workflow and print its outcome")

	return cmd
}

func newAnswerCmd(a *app) *cobra.Command {
	var workflowID, runID string

	cmd := &cobra.Command{
		Use:   "answer",
		Short: "Answer a workflow's pending question on this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workflowID == "" {
				return errors.New("--workflow-id is required")
			}
			ctx := cmd.Context()
			c, err := a.temporalClient()
			if err != nil {
				return err
			}
			defer c.Close()

			req, err := temporal.PendingRequest(ctx, c, workflowID, runID)
			if err != nil {
				return err
			}
			if req == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing pending")
				return nil
			}
			r, err := a.requester(a.console(cmd))
			if err != nil {
				return err
			}
			res, err := r.Elicit(ctx, req.Source, req.Message, req.Schema, elicitation.WithRequestID(req.ID))
			if err != nil {
				return err
			}
			return temporal.SendAnswer(ctx, c, workflowID, runID, temporal.AnswerOf(req.ID, res))
		},
	}
	cmd.Flags().StringVar(&workflowID, "workflow-id", "", "Workflow id")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run id (default: latest run)")

	return cmd
}
