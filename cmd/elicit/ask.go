package main

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ggoodman/elicit/internal/booking"
	"github.com/ggoodman/elicit/remote"
)

func newAskCmd(a *app) *cobra.Command {
	var party int
	var when string

	cmd := &cobra.Command{
		Use:   "ask [flags] -- COMMAND [ARGS...]",
		Short: "Send a booking question to a responder process over JSON-RPC",
		Example: `  elicit ask -- elicit respond
  elicit ask --party 4 -- ssh host elicit respond`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proc := exec.CommandContext(ctx, args[0], args[1:]...)
			proc.Stderr = cmd.ErrOrStderr()
			stdin, err := proc.StdinPipe()
			if err != nil {
				return err
			}
			stdout, err := proc.StdoutPipe()
			if err != nil {
				return err
			}
			if err := proc.Start(); err != nil {
				return fmt.Errorf("start responder: %w", err)
			}

			client := remote.NewClient(stdout, stdin, remote.WithLogger(a.log))
			r, err := a.requester(client)
			if err != nil {
				return err
			}
			res, elicitErr := r.Elicit(ctx, booking.Source, booking.Message(booking.Reservation{Party: party, When: when}), booking.Schema())

			_ = client.Close()
			_ = stdin.Close()
			if err := proc.Wait(); err != nil {
				a.log.Warn("ask.responder.exit", "err", err.Error())
			}
			if elicitErr != nil {
				return elicitErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), booking.Outcome(res))
			return nil
		},
	}
	cmd.Flags().IntVar(&party, "party", 2, "Number of people")
	cmd.Flags().StringVar(&when, "when", "June 21st at 5pm", "Date and time of the booking")

	return cmd
}
